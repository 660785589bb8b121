package network

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
)

// 消息号
type PacketCommand int32

const (
	// 客户端 -> 服务器
	Cmd_JoinReq        PacketCommand = 0x00
	Cmd_OpenBagReq     PacketCommand = 0x01
	Cmd_QuickMoveReq   PacketCommand = 0x02
	Cmd_CloseScreenReq PacketCommand = 0x03

	// 服务器 -> 客户端
	Cmd_JoinRes         PacketCommand = 0x10
	Cmd_OpenScreenRes   PacketCommand = 0x11
	Cmd_QuickMoveRes    PacketCommand = 0x12
	Cmd_ScreenClosedRes PacketCommand = 0x13
	Cmd_ErrorRes        PacketCommand = 0x14
)

var ErrPacketLength = errors.New("packet length error")

var _commandNames = map[PacketCommand]string{
	Cmd_JoinReq:         "JoinReq",
	Cmd_OpenBagReq:      "OpenBagReq",
	Cmd_QuickMoveReq:    "QuickMoveReq",
	Cmd_CloseScreenReq:  "CloseScreenReq",
	Cmd_JoinRes:         "JoinRes",
	Cmd_OpenScreenRes:   "OpenScreenRes",
	Cmd_QuickMoveRes:    "QuickMoveRes",
	Cmd_ScreenClosedRes: "ScreenClosedRes",
	Cmd_ErrorRes:        "ErrorRes",
}

func (c PacketCommand) String() string {
	if name, ok := _commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cmd(%#x)", int32(c))
}

// 一条websocket二进制消息就是一个包: VarInt消息号 + 数据
func Encode(p pk.Packet) []byte {
	var buf bytes.Buffer
	_, _ = pk.VarInt(p.ID).WriteTo(&buf)
	buf.Write(p.Data)
	return buf.Bytes()
}

func Decode(data []byte) (pk.Packet, error) {
	if len(data) == 0 {
		return pk.Packet{}, ErrPacketLength
	}
	r := bytes.NewReader(data)
	var id pk.VarInt
	n, err := id.ReadFrom(r)
	if err != nil {
		return pk.Packet{}, fmt.Errorf("%w: %v", ErrPacketLength, err)
	}
	return pk.Packet{ID: int32(id), Data: data[n:]}, nil
}

// 消息体里剩下的所有字节,不带长度前缀
type RawTail []byte

func (t RawTail) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t)
	return int64(n), err
}

func (t *RawTail) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	*t = data
	return int64(len(data)), err
}
