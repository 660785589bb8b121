package screen

import (
	"io"

	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/player"
)

// 创建背包界面,并写出客户端打开界面需要的数据
type BagScreenFactory struct {
	bag *inventory.BagInventory
}

func NewBagScreenFactory(bag *inventory.BagInventory) *BagScreenFactory {
	return &BagScreenFactory{bag: bag}
}

func (f *BagScreenFactory) DisplayName() string {
	return f.bag.DisplayName()
}

// 源物品不是背包时不创建
func (f *BagScreenFactory) CreateMenu(syncId int, p *player.Player) (*BagScreenHandler, bool) {
	if f.bag.IsEmptyBag() {
		return nil, false
	}
	if _, ok := f.bag.SourceStack().Bag(); !ok {
		return nil, false
	}
	return NewBagScreenHandler(syncId, p, f.bag), true
}

func (f *BagScreenFactory) WriteScreenOpeningData(w io.Writer) error {
	return f.bag.Send(w)
}

// 打开背包界面时不关闭当前界面
func (f *BagScreenFactory) ShouldCloseCurrentScreen() bool {
	return false
}
