package inventory

import (
	"fmt"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/item"
)

const (
	// 单边格子数上限,防止恶意数据分配过大的背包
	MaxBagDimension = 64
)

// 写入打开背包界面需要的数据
//
//	Boolean    无效背包,为true时后面没有数据
//	Identifier 界面贴图
//	VarInt     背包所在的装备槽位
//	VarInt     行数
//	VarInt     列数
//	Boolean    允许保存
//	Boolean    允许加载
//
// 背包内容不在这里同步
func (b *BagInventory) Send(w io.Writer) error {
	spec, ok := b.sourceStack.Bag()
	if b.sentinel || !ok {
		_, err := pk.Boolean(true).WriteTo(w)
		return err
	}
	fields := []pk.FieldEncoder{
		pk.Boolean(false),
		pk.Identifier(b.screenTextureId),
		pk.VarInt(spec.Slot),
		pk.VarInt(b.Rows()),
		pk.VarInt(b.Columns()),
		pk.Boolean(b.saveAllowed),
		pk.Boolean(b.loadAllowed),
	}
	for _, field := range fields {
		if _, err := field.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// 根据Send写入的数据重建背包,背包物品从接收方自己的装备槽位取
func Receive(viewer Viewer, r io.Reader, store db.BagContainerLookup) (*BagInventory, error) {
	var invalid pk.Boolean
	if _, err := invalid.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if invalid {
		return Empty, nil
	}
	var (
		textureId   pk.Identifier
		slot        pk.VarInt
		rows        pk.VarInt
		columns     pk.VarInt
		saveAllowed pk.Boolean
		loadAllowed pk.Boolean
	)
	fields := []pk.FieldDecoder{&textureId, &slot, &rows, &columns, &saveAllowed, &loadAllowed}
	for _, field := range fields {
		if _, err := field.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	equipmentSlot := item.EquipmentSlot(slot)
	if !equipmentSlot.IsValid() {
		return nil, fmt.Errorf("%w: equipment slot %v", ErrMalformedPayload, int32(slot))
	}
	if rows < 0 || rows > MaxBagDimension || columns < 0 || columns > MaxBagDimension {
		return nil, fmt.Errorf("%w: size %vx%v", ErrMalformedPayload, int32(rows), int32(columns))
	}
	return NewBagInventory(viewer.EquippedStack(equipmentSlot), BagConfig{
		ScreenTextureId: string(textureId),
		Rows:            int(rows),
		Columns:         int(columns),
		SaveAllowed:     bool(saveAllowed),
		LoadAllowed:     bool(loadAllowed),
	}, store), nil
}
