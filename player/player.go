package player

import (
	"log/slog"

	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
)

var _ inventory.Viewer = (*Player)(nil)

const (
	CraftingRows    = 2
	CraftingColumns = 2
)

// 玩家对象
type Player struct {
	// 玩家唯一id
	id int64
	// 玩家名
	name string
	// 客户端上的玩家镜像,不处理持久化
	client bool
	// 背包格子(快捷栏+主背包+护甲+副手)
	inventory *Inventory
	// 2x2合成格子和合成结果
	crafting    *inventory.Grid
	craftResult *inventory.Grid
	// 背包界面状态
	bagStatus inventory.BagStatus
	// 丢到世界里的物品
	dropped []*item.Stack
}

func NewPlayer(id int64, name string, client bool) *Player {
	return &Player{
		id:          id,
		name:        name,
		client:      client,
		inventory:   NewInventory(),
		crafting:    inventory.NewGrid(CraftingRows, CraftingColumns),
		craftResult: inventory.NewGrid(1, 1),
	}
}

// 玩家唯一id
func (p *Player) GetId() int64 {
	return p.id
}

func (p *Player) GetName() string {
	return p.name
}

func (p *Player) IsClient() bool {
	return p.client
}

func (p *Player) GetInventory() *Inventory {
	return p.inventory
}

func (p *Player) GetCrafting() *inventory.Grid {
	return p.crafting
}

func (p *Player) GetCraftResult() *inventory.Grid {
	return p.craftResult
}

func (p *Player) SetBagStatus(status inventory.BagStatus) {
	p.bagStatus = status
}

func (p *Player) GetBagStatus() inventory.BagStatus {
	return p.bagStatus
}

// 装备槽位上的物品
func (p *Player) EquippedStack(slot item.EquipmentSlot) *item.Stack {
	return p.inventory.EquippedStack(slot)
}

func (p *Player) SetEquippedStack(slot item.EquipmentSlot, stack *item.Stack) {
	p.inventory.SetEquippedStack(slot, stack)
}

// 丢弃物品到世界里(世界本身不在这里实现,只记录)
func (p *Player) DropItem(stack *item.Stack) {
	if stack.IsEmpty() {
		return
	}
	dropped := stack.Copy()
	p.dropped = append(p.dropped, dropped)
	slog.Debug("DropItem", "playerId", p.id, "item", dropped)
}

func (p *Player) GetDropped() []*item.Stack {
	return p.dropped
}

// 放入玩家背包,放不下的丢到世界里
func (p *Player) Give(stack *item.Stack) {
	if stack.IsEmpty() {
		return
	}
	p.inventory.Insert(stack)
	if !stack.IsEmpty() {
		p.DropItem(stack)
		stack.Count = 0
	}
}
