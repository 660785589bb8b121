package network

import (
	"bytes"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
)

// 错误码
const (
	ErrCodeUnknown     = 0
	ErrCodeNotJoined   = 1
	ErrCodeBadRequest  = 2
	ErrCodeNotABag     = 3
	ErrCodeStaleScreen = 4
)

// 加入游戏
type JoinReq struct {
	Name string
}

func (m *JoinReq) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_JoinReq), pk.String(m.Name))
}

func (m *JoinReq) Scan(p pk.Packet) error {
	return p.Scan((*pk.String)(&m.Name))
}

// 打开装备槽位上的背包
type OpenBagReq struct {
	Slot int32
}

func (m *OpenBagReq) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_OpenBagReq), pk.VarInt(m.Slot))
}

func (m *OpenBagReq) Scan(p pk.Packet) error {
	return p.Scan((*pk.VarInt)(&m.Slot))
}

// shift+点击格子
type QuickMoveReq struct {
	SyncId int32
	SlotId int32
}

func (m *QuickMoveReq) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_QuickMoveReq), pk.VarInt(m.SyncId), pk.VarInt(m.SlotId))
}

func (m *QuickMoveReq) Scan(p pk.Packet) error {
	return p.Scan((*pk.VarInt)(&m.SyncId), (*pk.VarInt)(&m.SlotId))
}

type CloseScreenReq struct {
	SyncId int32
}

func (m *CloseScreenReq) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_CloseScreenReq), pk.VarInt(m.SyncId))
}

func (m *CloseScreenReq) Scan(p pk.Packet) error {
	return p.Scan((*pk.VarInt)(&m.SyncId))
}

// 装备槽位上的物品
type EquippedItem struct {
	Slot   int32
	ItemId string
	Count  int32
}

func (e EquippedItem) WriteTo(w io.Writer) (int64, error) {
	return pk.Tuple{pk.VarInt(e.Slot), pk.Identifier(e.ItemId), pk.VarInt(e.Count)}.WriteTo(w)
}

func (e *EquippedItem) ReadFrom(r io.Reader) (int64, error) {
	return pk.Tuple{(*pk.VarInt)(&e.Slot), (*pk.Identifier)(&e.ItemId), (*pk.VarInt)(&e.Count)}.ReadFrom(r)
}

// 加入成功,带上玩家身上的装备,客户端据此还原装备槽位
type JoinRes struct {
	PlayerId  int64
	Equipment []EquippedItem
}

func (m *JoinRes) Packet() pk.Packet {
	fields := []pk.FieldEncoder{pk.VarLong(m.PlayerId), pk.VarInt(len(m.Equipment))}
	for _, e := range m.Equipment {
		fields = append(fields, e)
	}
	return pk.Marshal(int32(Cmd_JoinRes), fields...)
}

func (m *JoinRes) Scan(p pk.Packet) error {
	r := bytes.NewReader(p.Data)
	var (
		playerId pk.VarLong
		count    pk.VarInt
	)
	if _, err := (pk.Tuple{&playerId, &count}).ReadFrom(r); err != nil {
		return err
	}
	if count < 0 || int(count) > r.Len() {
		return ErrPacketLength
	}
	m.PlayerId = int64(playerId)
	m.Equipment = make([]EquippedItem, count)
	for i := range m.Equipment {
		if _, err := m.Equipment[i].ReadFrom(r); err != nil {
			return err
		}
	}
	return nil
}

// 打开界面,Payload是背包界面的初始化数据
type OpenScreenRes struct {
	SyncId  int32
	Type    string
	Title   string
	Payload []byte
}

func (m *OpenScreenRes) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_OpenScreenRes),
		pk.VarInt(m.SyncId),
		pk.Identifier(m.Type),
		pk.String(m.Title),
		RawTail(m.Payload),
	)
}

func (m *OpenScreenRes) Scan(p pk.Packet) error {
	return p.Scan(
		(*pk.VarInt)(&m.SyncId),
		(*pk.Identifier)(&m.Type),
		(*pk.String)(&m.Title),
		(*RawTail)(&m.Payload),
	)
}

// 快速移动的结果,Moved为false时物品没有变化
type QuickMoveRes struct {
	SyncId int32
	SlotId int32
	Moved  bool
	ItemId string
	Count  int32
}

func (m *QuickMoveRes) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_QuickMoveRes),
		pk.VarInt(m.SyncId),
		pk.VarInt(m.SlotId),
		pk.Boolean(m.Moved),
		pk.Identifier(m.ItemId),
		pk.VarInt(m.Count),
	)
}

func (m *QuickMoveRes) Scan(p pk.Packet) error {
	return p.Scan(
		(*pk.VarInt)(&m.SyncId),
		(*pk.VarInt)(&m.SlotId),
		(*pk.Boolean)(&m.Moved),
		(*pk.Identifier)(&m.ItemId),
		(*pk.VarInt)(&m.Count),
	)
}

type ScreenClosedRes struct {
	SyncId int32
}

func (m *ScreenClosedRes) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_ScreenClosedRes), pk.VarInt(m.SyncId))
}

func (m *ScreenClosedRes) Scan(p pk.Packet) error {
	return p.Scan((*pk.VarInt)(&m.SyncId))
}

type ErrorRes struct {
	Code    int32
	Message string
}

func (m *ErrorRes) Packet() pk.Packet {
	return pk.Marshal(int32(Cmd_ErrorRes), pk.VarInt(m.Code), pk.String(m.Message))
}

func (m *ErrorRes) Scan(p pk.Packet) error {
	return p.Scan((*pk.VarInt)(&m.Code), (*pk.String)(&m.Message))
}
