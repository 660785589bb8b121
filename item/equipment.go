package item

import "fmt"

// 装备槽位,序号即协议里的枚举值
type EquipmentSlot int32

const (
	MainHand EquipmentSlot = iota
	OffHand
	Feet
	Legs
	Chest
	Head

	equipmentSlotCount
)

var _equipmentSlotNames = [...]string{"mainhand", "offhand", "feet", "legs", "chest", "head"}

func (e EquipmentSlot) IsValid() bool {
	return e >= 0 && e < equipmentSlotCount
}

// 是否护甲槽位
func (e EquipmentSlot) IsArmor() bool {
	return e >= Feet && e <= Head
}

// 在所属分组(手/护甲)里的索引
func (e EquipmentSlot) EntitySlotId() int {
	switch e {
	case MainHand, Feet:
		return 0
	case OffHand, Legs:
		return 1
	case Chest:
		return 2
	case Head:
		return 3
	}
	return -1
}

func (e EquipmentSlot) String() string {
	if !e.IsValid() {
		return fmt.Sprintf("EquipmentSlot(%d)", int32(e))
	}
	return _equipmentSlotNames[e]
}

// yaml/配置里用名字表示
func ParseEquipmentSlot(name string) (EquipmentSlot, error) {
	for i, n := range _equipmentSlotNames {
		if n == name {
			return EquipmentSlot(i), nil
		}
	}
	return 0, fmt.Errorf("unknown equipment slot %q", name)
}

func (e EquipmentSlot) MarshalYAML() (any, error) {
	return e.String(), nil
}

func (e *EquipmentSlot) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	slot, err := ParseEquipmentSlot(name)
	if err != nil {
		return err
	}
	*e = slot
	return nil
}
