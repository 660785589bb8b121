package screen

import (
	"log/slog"

	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
)

// 界面格子背后的容器
type Inventory interface {
	Size() int
	Get(index int) (*item.Stack, error)
	Set(index int, stack *item.Stack) error
	MarkDirty()
}

// 格子的放入规则
type SlotRule interface {
	CanInsert(stack *item.Stack) bool
	// 该格子最多能放多少个
	MaxItemCount() int
}

// 界面上的一个格子,对应容器里的一个位置
type Slot struct {
	inventory Inventory
	// 在容器里的索引
	index int
	// 在界面里的序号
	Id   int
	X, Y int
	rule SlotRule
	// 锁定的格子不能取出物品
	locked bool

	// 快速移动成功时的回调,amount为移走的数量
	OnQuickTransferFunc func(amount int)
	// 玩家从格子取走物品时的回调
	OnTakeItemFunc func(p *player.Player, stack *item.Stack)
}

func NewSlot(inventory Inventory, index, x, y int) *Slot {
	return &Slot{
		inventory: inventory,
		index:     index,
		X:         x,
		Y:         y,
		rule:      anyRule{},
	}
}

func (s *Slot) GetIndex() int {
	return s.index
}

func (s *Slot) GetInventory() Inventory {
	return s.inventory
}

func (s *Slot) Stack() *item.Stack {
	stack, err := s.inventory.Get(s.index)
	if err != nil {
		slog.Error("SlotStackErr", "slotId", s.Id, "index", s.index, "err", err)
		return nil
	}
	return stack
}

func (s *Slot) HasStack() bool {
	return !s.Stack().IsEmpty()
}

func (s *Slot) SetStack(stack *item.Stack) {
	if err := s.inventory.Set(s.index, stack); err != nil {
		slog.Error("SlotSetStackErr", "slotId", s.Id, "index", s.index, "err", err)
	}
}

// 替换格子里的物品,previous是被替换掉的物品
func (s *Slot) SetStackPrevious(stack, previous *item.Stack) {
	s.SetStack(stack)
	slog.Debug("SlotChanged", "slotId", s.Id, "previous", previous, "stack", stack)
}

func (s *Slot) MarkDirty() {
	s.inventory.MarkDirty()
}

func (s *Slot) CanInsert(stack *item.Stack) bool {
	return s.rule.CanInsert(stack)
}

func (s *Slot) MaxItemCount(stack *item.Stack) int {
	return min(s.rule.MaxItemCount(), stack.MaxCount())
}

func (s *Slot) CanTakeItems(p *player.Player) bool {
	return !s.locked
}

func (s *Slot) SetLocked(locked bool) {
	s.locked = locked
}

func (s *Slot) OnQuickTransfer(newStack, original *item.Stack) {
	amount := original.GetCount() - newStack.GetCount()
	if amount > 0 && s.OnQuickTransferFunc != nil {
		s.OnQuickTransferFunc(amount)
	}
}

func (s *Slot) OnTakeItem(p *player.Player, stack *item.Stack) {
	if s.OnTakeItemFunc != nil {
		s.OnTakeItemFunc(p, stack)
	}
	s.MarkDirty()
}

type anyRule struct{}

func (anyRule) CanInsert(stack *item.Stack) bool {
	return true
}

func (anyRule) MaxItemCount() int {
	return item.DefaultMaxCount
}

// 护甲格子只能放对应部位的装备
type armorRule struct {
	equipment item.EquipmentSlot
}

func (r armorRule) CanInsert(stack *item.Stack) bool {
	return stack.PreferredEquipmentSlot() == r.equipment
}

func (r armorRule) MaxItemCount() int {
	return 1
}

func NewArmorSlot(inventory Inventory, index, x, y int, equipment item.EquipmentSlot) *Slot {
	s := NewSlot(inventory, index, x, y)
	s.rule = armorRule{equipment: equipment}
	return s
}

// 合成结果只能取出
type resultRule struct{}

func (resultRule) CanInsert(stack *item.Stack) bool {
	return false
}

func (resultRule) MaxItemCount() int {
	return item.DefaultMaxCount
}

func NewResultSlot(inventory Inventory, index, x, y int) *Slot {
	s := NewSlot(inventory, index, x, y)
	s.rule = resultRule{}
	return s
}

// 背包格子不能放背包物品(不能嵌套),也不能放背包自己
type bagRule struct {
	source *item.Stack
}

func (r bagRule) CanInsert(stack *item.Stack) bool {
	if stack == r.source {
		return false
	}
	_, isBag := stack.Bag()
	return !isBag
}

func (r bagRule) MaxItemCount() int {
	return item.DefaultMaxCount
}

func NewBagSlot(inventory Inventory, index, x, y int, source *item.Stack) *Slot {
	s := NewSlot(inventory, index, x, y)
	s.rule = bagRule{source: source}
	return s
}
