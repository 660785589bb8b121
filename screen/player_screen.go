package screen

import (
	"log/slog"

	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
)

// 玩家界面的格子序号
// 0:合成结果 1-4:合成格子 5-8:护甲(头到脚) 9-35:主背包 36-44:快捷栏 45:副手
const (
	ResultSlot     = 0
	CraftingStart  = 1
	CraftingEnd    = 5
	EquipmentStart = 5
	EquipmentEnd   = 9
	InventoryStart = 9
	InventoryEnd   = 36
	HotbarStart    = 36
	HotbarEnd      = 45
	OffHandSlot    = 45

	// 格子的像素尺寸
	SlotSize = 18
)

// 护甲格子从上到下的顺序
var _armorOrder = [player.ArmorSize]item.EquipmentSlot{item.Head, item.Chest, item.Legs, item.Feet}

// 护甲部位对应的界面格子
func EquipmentSlotId(slot item.EquipmentSlot) int {
	return EquipmentEnd - 1 - slot.EntitySlotId()
}

// 玩家自身的界面:合成,护甲,背包,快捷栏,副手
type PlayerScreenHandler struct {
	Handler
	player *player.Player
}

func NewPlayerScreenHandler(syncId int, handlerType HandlerType, p *player.Player) *PlayerScreenHandler {
	h := &PlayerScreenHandler{
		Handler: Handler{
			syncId:      syncId,
			handlerType: handlerType,
		},
		player: p,
	}
	playerInventory := p.GetInventory()
	result := h.AddSlot(NewResultSlot(p.GetCraftResult(), 0, 154, 28))
	result.OnQuickTransferFunc = func(amount int) {
		slog.Debug("CraftQuickTransfer", "playerId", p.GetId(), "amount", amount)
	}
	for i := 0; i < player.CraftingRows; i++ {
		for j := 0; j < player.CraftingColumns; j++ {
			h.AddSlot(NewSlot(p.GetCrafting(), j+i*player.CraftingColumns, 98+j*SlotSize, 18+i*SlotSize))
		}
	}
	for i, equipment := range _armorOrder {
		h.AddSlot(NewArmorSlot(playerInventory, player.ArmorStart+equipment.EntitySlotId(), 8, 8+i*SlotSize, equipment))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < player.HotbarSize; j++ {
			h.AddSlot(NewSlot(playerInventory, j+(i+1)*player.HotbarSize, 8+j*SlotSize, 84+i*SlotSize))
		}
	}
	for i := 0; i < player.HotbarSize; i++ {
		h.AddSlot(NewSlot(playerInventory, i, 8+i*SlotSize, 142))
	}
	h.AddSlot(NewSlot(playerInventory, player.OffHandIndex, 77, 62))
	return h
}

func (h *PlayerScreenHandler) GetPlayer() *player.Player {
	return h.player
}

// 默认的快速移动
// 返回移动前的物品副本,没有移动时返回nil
func (h *PlayerScreenHandler) QuickMove(p *player.Player, slotIndex int) *item.Stack {
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
		if !h.InsertItem(stackInSlot, InventoryStart, InventoryEnd, false) {
			return nil
		}
	default:
		if !h.InsertItem(stackInSlot, InventoryStart, HotbarEnd, false) {
			return nil
		}
	}
	return h.finishQuickMove(p, slot, stackInSlot, previous, slotIndex == ResultSlot)
}

// 关闭界面:鼠标上的物品丢掉,合成格子里的物品还给玩家
func (h *PlayerScreenHandler) OnClosed(p *player.Player) {
	if cursor := h.GetCursor(); !cursor.IsEmpty() {
		p.DropItem(cursor)
		h.SetCursor(nil)
	}
	p.GetCraftResult().Clear()
	if p.IsClient() {
		return
	}
	crafting := p.GetCrafting()
	for i := 0; i < crafting.Size(); i++ {
		stack, _ := crafting.Get(i)
		if stack.IsEmpty() {
			continue
		}
		_ = crafting.Set(i, nil)
		p.Give(stack)
	}
}
