package item

import (
	"fmt"
	"log/slog"
)

const (
	DefaultMaxCount = 64
)

// 背包物品的配置
type BagSpec struct {
	Rows      int           `yaml:"Rows"`
	Columns   int           `yaml:"Columns"`
	TextureId string        `yaml:"TextureId"`
	Slot      EquipmentSlot `yaml:"Slot"` // 背包装备在哪个槽位
}

func (b *BagSpec) Size() int {
	return b.Rows * b.Columns
}

// 物品配置
type Def struct {
	Id        string        `yaml:"Id"`
	Name      string        `yaml:"Name"`
	MaxCount  int           `yaml:"MaxCount"`
	Equipment EquipmentSlot `yaml:"Equipment"` // 偏好的装备槽位
	Bag       *BagSpec      `yaml:"Bag"`
}

func (d *Def) GetMaxCount() int {
	if d.MaxCount <= 0 {
		return DefaultMaxCount
	}
	return d.MaxCount
}

// 物品堆
// nil表示空物品,物品堆之间按指针区分
type Stack struct {
	Def        *Def
	Count      int
	Uid        int64 // 持久化标识,首次关联附加数据时才分配
	CustomName string
}

func NewStack(def *Def, count int) *Stack {
	return &Stack{
		Def:   def,
		Count: count,
	}
}

func (s *Stack) IsEmpty() bool {
	return s == nil || s.Def == nil || s.Count <= 0
}

func (s *Stack) GetCount() int {
	if s.IsEmpty() {
		return 0
	}
	return s.Count
}

func (s *Stack) Copy() *Stack {
	if s.IsEmpty() {
		return nil
	}
	c := *s
	return &c
}

func (s *Stack) MaxCount() int {
	if s.IsEmpty() {
		return DefaultMaxCount
	}
	return s.Def.GetMaxCount()
}

func (s *Stack) IsStackable() bool {
	return s.MaxCount() > 1 && s.Uid == 0
}

func (s *Stack) Increment(n int) {
	s.Count += n
}

func (s *Stack) Decrement(n int) {
	s.Count -= n
}

// 拆分出最多n个
func (s *Stack) Split(n int) *Stack {
	if s.IsEmpty() || n <= 0 {
		return nil
	}
	n = min(n, s.Count)
	c := s.Copy()
	c.Count = n
	s.Count -= n
	return c
}

// 物品和附加数据都一致,可以合并
func CanCombine(a, b *Stack) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.Def == b.Def && a.CustomName == b.CustomName && a.Uid == 0 && b.Uid == 0
}

// 能力查询:该物品是否提供背包配置
func (s *Stack) Bag() (*BagSpec, bool) {
	if s.IsEmpty() || s.Def.Bag == nil {
		return nil, false
	}
	return s.Def.Bag, true
}

func (s *Stack) PreferredEquipmentSlot() EquipmentSlot {
	if s.IsEmpty() {
		return MainHand
	}
	return s.Def.Equipment
}

func (s *Stack) DisplayName() string {
	if s.IsEmpty() {
		return ""
	}
	if s.CustomName != "" {
		return s.CustomName
	}
	if s.Def.Name != "" {
		return s.Def.Name
	}
	return s.Def.Id
}

func (s *Stack) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%d %s", s.Count, s.Def.Id)
}

func (s *Stack) LogValue() slog.Value {
	return slog.StringValue(s.String())
}
