package screen

import (
	"fmt"

	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
)

// 界面类型,客户端据此创建对应的界面
type HandlerType string

const (
	PlayerHandlerType     HandlerType = "bags:player"
	GenericBagHandlerType HandlerType = "bags:generic_bag"
)

// 一个打开的界面:一组格子和鼠标上拿着的物品
type Handler struct {
	syncId      int
	handlerType HandlerType
	slots       []*Slot
	cursor      *item.Stack
}

func (h *Handler) GetSyncId() int {
	return h.syncId
}

func (h *Handler) GetType() HandlerType {
	return h.handlerType
}

func (h *Handler) AddSlot(slot *Slot) *Slot {
	slot.Id = len(h.slots)
	h.slots = append(h.slots, slot)
	return slot
}

func (h *Handler) SlotCount() int {
	return len(h.slots)
}

func (h *Handler) Slots() []*Slot {
	return h.slots
}

func (h *Handler) GetSlot(slotIndex int) (*Slot, error) {
	if slotIndex < 0 || slotIndex >= len(h.slots) {
		return nil, fmt.Errorf("%w: slot %v not in [0,%v)", inventory.ErrIndexOutOfRange, slotIndex, len(h.slots))
	}
	return h.slots[slotIndex], nil
}

func (h *Handler) GetCursor() *item.Stack {
	return h.cursor
}

func (h *Handler) SetCursor(stack *item.Stack) {
	if stack.IsEmpty() {
		stack = nil
	}
	h.cursor = stack
}

// 把stack放进[start,end)范围的格子,先合并到相同物品,再放进第一个可放的空格子
// stack的数量会相应减少,有任何物品移动时返回true
func (h *Handler) InsertItem(stack *item.Stack, start, end int, fromLast bool) bool {
	start = max(start, 0)
	end = min(end, len(h.slots))
	if stack.IsEmpty() || start >= end {
		return false
	}
	moved := false
	next := func(i int) int {
		if fromLast {
			return i - 1
		}
		return i + 1
	}
	first := start
	if fromLast {
		first = end - 1
	}
	if stack.IsStackable() {
		for i := first; !stack.IsEmpty() && i >= start && i < end; i = next(i) {
			slot := h.slots[i]
			existing := slot.Stack()
			if !item.CanCombine(existing, stack) {
				continue
			}
			total := existing.Count + stack.Count
			maxCount := slot.MaxItemCount(existing)
			if total <= maxCount {
				stack.Count = 0
				existing.Count = total
				slot.MarkDirty()
				moved = true
			} else if existing.Count < maxCount {
				stack.Decrement(maxCount - existing.Count)
				existing.Count = maxCount
				slot.MarkDirty()
				moved = true
			}
		}
	}
	if !stack.IsEmpty() {
		for i := first; i >= start && i < end; i = next(i) {
			slot := h.slots[i]
			if slot.HasStack() || !slot.CanInsert(stack) {
				continue
			}
			slot.SetStack(stack.Split(slot.MaxItemCount(stack)))
			slot.MarkDirty()
			moved = true
			break
		}
	}
	return moved
}

// 快速移动的收尾
// 原格子空了就清掉,数量没变化返回nil,否则返回移动前的副本
func (h *Handler) finishQuickMove(p *player.Player, slot *Slot, stackInSlot, previous *item.Stack, dropRemainder bool) *item.Stack {
	if stackInSlot.IsEmpty() {
		slot.SetStackPrevious(nil, previous)
	} else {
		slot.MarkDirty()
	}
	if stackInSlot.GetCount() == previous.GetCount() {
		return nil
	}
	slot.OnTakeItem(p, stackInSlot)
	if dropRemainder {
		p.DropItem(stackInSlot)
		// 剩下的已经丢到世界里
		slot.SetStack(nil)
	}
	return previous
}
