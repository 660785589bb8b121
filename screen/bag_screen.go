package screen

import (
	"io"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
)

const (
	// 背包标题栏的高度
	BagTitleHeight = 4
)

// 背包界面把玩家主背包往下推的像素
func BagOffsetY(rows int) int {
	if rows <= 0 {
		return 0
	}
	return rows*SlotSize + BagTitleHeight
}

// 背包界面:玩家界面 + 背包格子
// 背包格子排在玩家界面的格子后面,序号[BagStart,BagEnd)
type BagScreenHandler struct {
	*PlayerScreenHandler
	bag      *inventory.BagInventory
	bagStart int
	bagEnd   int
	offsetY  int
}

func NewBagScreenHandler(syncId int, p *player.Player, bag *inventory.BagInventory) *BagScreenHandler {
	h := &BagScreenHandler{
		PlayerScreenHandler: NewPlayerScreenHandler(syncId, GenericBagHandlerType, p),
		bag:                 bag,
	}
	bag.OnOpen(p)
	h.bagStart = h.SlotCount()
	h.bagEnd = h.bagStart + bag.Size()
	h.offsetY = BagOffsetY(bag.Rows())
	source := bag.SourceStack()
	playerInventory := p.GetInventory()
	for _, slot := range h.slots {
		if slot.inventory == playerInventory && slot.index < player.MainSize {
			slot.Y += h.offsetY
		}
		// 打开中的背包物品不能被移走
		if !source.IsEmpty() && slot.Stack() == source {
			slot.SetLocked(true)
		}
	}
	anchor := h.slots[InventoryStart]
	left := anchor.X
	top := anchor.Y - h.offsetY
	for row := 0; row < bag.Rows(); row++ {
		for col := 0; col < bag.Columns(); col++ {
			h.AddSlot(NewBagSlot(bag, col+row*bag.Columns(), left+col*SlotSize, top+row*SlotSize, source))
		}
	}
	return h
}

// 客户端根据服务器发来的数据创建背包界面
func NewBagScreenHandlerFromPayload(syncId int, p *player.Player, r io.Reader, store db.BagContainerLookup) (*BagScreenHandler, error) {
	bag, err := inventory.Receive(p, r, store)
	if err != nil {
		return nil, err
	}
	return NewBagScreenHandler(syncId, p, bag), nil
}

func (h *BagScreenHandler) BagInventory() *inventory.BagInventory {
	return h.bag
}

func (h *BagScreenHandler) ScreenTextureId() string {
	return h.bag.ScreenTextureId()
}

func (h *BagScreenHandler) SourceStack() *item.Stack {
	return h.bag.SourceStack()
}

func (h *BagScreenHandler) BagStart() int {
	return h.bagStart
}

func (h *BagScreenHandler) BagEnd() int {
	return h.bagEnd
}

func (h *BagScreenHandler) OffsetY() int {
	return h.offsetY
}

// 背包界面的快速移动,快捷栏的物品优先放进背包
func (h *BagScreenHandler) QuickMove(p *player.Player, slotIndex int) *item.Stack {
	slot, err := h.GetSlot(slotIndex)
	if err != nil || !slot.HasStack() || !slot.CanTakeItems(p) {
		return nil
	}
	stackInSlot := slot.Stack()
	previous := stackInSlot.Copy()
	equipment := previous.PreferredEquipmentSlot()
	switch {
	case slotIndex == ResultSlot:
		if !h.InsertItem(stackInSlot, InventoryStart, HotbarEnd, true) {
			return nil
		}
		slot.OnQuickTransfer(stackInSlot, previous)
	case slotIndex >= CraftingStart && slotIndex < CraftingEnd:
		if !h.InsertItem(stackInSlot, InventoryStart, HotbarEnd, false) {
			return nil
		}
	case slotIndex >= EquipmentStart && slotIndex < EquipmentEnd:
		if !h.InsertItem(stackInSlot, InventoryStart, HotbarEnd, false) {
			return nil
		}
	case equipment.IsArmor() && !h.slots[EquipmentSlotId(equipment)].HasStack():
		target := EquipmentSlotId(equipment)
		if !h.InsertItem(stackInSlot, target, target+1, false) {
			return nil
		}
	case equipment == item.OffHand && !h.slots[OffHandSlot].HasStack():
		if !h.InsertItem(stackInSlot, OffHandSlot, OffHandSlot+1, false) {
			return nil
		}
	case slotIndex >= InventoryStart && slotIndex < InventoryEnd:
		if !h.InsertItem(stackInSlot, HotbarStart, HotbarEnd, false) {
			return nil
		}
	case slotIndex >= HotbarStart && slotIndex < HotbarEnd:
		if !h.InsertItem(stackInSlot, h.bagStart, h.bagEnd, false) {
			return h.PlayerScreenHandler.QuickMove(p, slotIndex)
		}
	default:
		return h.PlayerScreenHandler.QuickMove(p, slotIndex)
	}
	return h.finishQuickMove(p, slot, stackInSlot, previous, slotIndex == ResultSlot)
}

// 先关闭背包(保存),再执行玩家界面的关闭
func (h *BagScreenHandler) OnClosed(p *player.Player) {
	h.bag.OnClose(p)
	h.PlayerScreenHandler.OnClosed(p)
}
