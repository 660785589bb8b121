package player

import (
	"fmt"

	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
)

const (
	HotbarSize  = 9
	MainSize    = 36 // 包含快捷栏
	ArmorSize   = 4
	OffHandSize = 1
	// 总格子数
	InventorySize = MainSize + ArmorSize + OffHandSize

	ArmorStart   = MainSize
	OffHandIndex = ArmorStart + ArmorSize
)

// 玩家身上的格子
// 0-8:快捷栏 9-35:主背包 36-39:护甲(脚,腿,胸,头) 40:副手
type Inventory struct {
	cells [InventorySize]*item.Stack
	// 当前选中的快捷栏
	selected int
	// 变化次数,客户端同步用
	changeCount int
}

func NewInventory() *Inventory {
	return &Inventory{}
}

func (inv *Inventory) Size() int {
	return InventorySize
}

func (inv *Inventory) Get(index int) (*item.Stack, error) {
	if index < 0 || index >= InventorySize {
		return nil, fmt.Errorf("%w: %v not in [0,%v)", inventory.ErrIndexOutOfRange, index, InventorySize)
	}
	return inv.cells[index], nil
}

func (inv *Inventory) Set(index int, stack *item.Stack) error {
	if index < 0 || index >= InventorySize {
		return fmt.Errorf("%w: %v not in [0,%v)", inventory.ErrIndexOutOfRange, index, InventorySize)
	}
	if stack.IsEmpty() {
		stack = nil
	}
	inv.cells[index] = stack
	inv.MarkDirty()
	return nil
}

func (inv *Inventory) MarkDirty() {
	inv.changeCount++
}

func (inv *Inventory) GetChangeCount() int {
	return inv.changeCount
}

func (inv *Inventory) GetSelected() int {
	return inv.selected
}

// 选择快捷栏(0-8),超出范围无效
func (inv *Inventory) SetSelected(selected int) {
	if selected >= 0 && selected < HotbarSize {
		inv.selected = selected
	}
}

func equipmentIndex(inv *Inventory, slot item.EquipmentSlot) int {
	switch {
	case slot == item.MainHand:
		return inv.selected
	case slot == item.OffHand:
		return OffHandIndex
	case slot.IsArmor():
		return ArmorStart + slot.EntitySlotId()
	}
	return -1
}

func (inv *Inventory) EquippedStack(slot item.EquipmentSlot) *item.Stack {
	index := equipmentIndex(inv, slot)
	if index < 0 {
		return nil
	}
	return inv.cells[index]
}

func (inv *Inventory) SetEquippedStack(slot item.EquipmentSlot, stack *item.Stack) {
	if index := equipmentIndex(inv, slot); index >= 0 {
		_ = inv.Set(index, stack)
	}
}

// 放入主背包:先合并到相同物品,再放空格子
// stack的数量会相应减少
func (inv *Inventory) Insert(stack *item.Stack) {
	if stack.IsEmpty() {
		return
	}
	if stack.IsStackable() {
		for i := 0; i < MainSize && !stack.IsEmpty(); i++ {
			existing := inv.cells[i]
			if !item.CanCombine(existing, stack) {
				continue
			}
			space := existing.MaxCount() - existing.Count
			if space <= 0 {
				continue
			}
			n := min(space, stack.Count)
			existing.Increment(n)
			stack.Decrement(n)
			inv.MarkDirty()
		}
	}
	for i := 0; i < MainSize && !stack.IsEmpty(); i++ {
		if !inv.cells[i].IsEmpty() {
			continue
		}
		inv.cells[i] = stack.Split(stack.MaxCount())
		inv.MarkDirty()
	}
}
