package testclient

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/network"
	"github.com/fish-tennis/bagserver/player"
	"github.com/fish-tennis/bagserver/screen"
	"github.com/gorilla/websocket"
)

const replyTimeout = 5 * time.Second

// 服务器回复的错误
type ServerError struct {
	Code    int32
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %v: %v", e.Code, e.Message)
}

// 模拟客户端
// 客户端上有一份玩家镜像,打开背包时根据服务器发来的数据创建客户端的背包界面
type MockClient struct {
	conn     *websocket.Conn
	registry *item.Registry
	player   *player.Player
	// 当前打开的背包界面
	bagScreen *screen.BagScreenHandler
}

// 连接服务器并加入游戏
func Dial(ctx context.Context, url, name string, registry *item.Registry) (*MockClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &MockClient{
		conn:     conn,
		registry: registry,
	}
	reply, err := c.request(&network.JoinReq{Name: name})
	if err != nil {
		conn.Close()
		return nil, err
	}
	res := &network.JoinRes{}
	if err := c.expect(reply, network.Cmd_JoinRes, res); err != nil {
		conn.Close()
		return nil, err
	}
	c.player = player.NewPlayer(res.PlayerId, name, true)
	for _, equipped := range res.Equipment {
		stack, err := registry.NewStack(equipped.ItemId, int(equipped.Count))
		if err != nil {
			slog.Warn("MirrorEquipmentErr", "itemId", equipped.ItemId, "err", err)
			continue
		}
		c.player.SetEquippedStack(item.EquipmentSlot(equipped.Slot), stack)
	}
	slog.Debug("MockClientJoin", "playerId", res.PlayerId, "equipment", len(res.Equipment))
	return c, nil
}

func (c *MockClient) GetPlayer() *player.Player {
	return c.player
}

func (c *MockClient) GetBagScreen() *screen.BagScreenHandler {
	return c.bagScreen
}

func (c *MockClient) syncId() int32 {
	if c.bagScreen == nil {
		return 0
	}
	return int32(c.bagScreen.GetSyncId())
}

// 打开装备槽位上的背包
func (c *MockClient) OpenBag(slot item.EquipmentSlot) (*screen.BagScreenHandler, error) {
	reply, err := c.request(&network.OpenBagReq{Slot: int32(slot)})
	if err != nil {
		return nil, err
	}
	res := &network.OpenScreenRes{}
	if err := c.expect(reply, network.Cmd_OpenScreenRes, res); err != nil {
		return nil, err
	}
	// 客户端不访问存储
	handler, err := screen.NewBagScreenHandlerFromPayload(int(res.SyncId), c.player, bytes.NewReader(res.Payload), nil)
	if err != nil {
		return nil, err
	}
	if c.bagScreen != nil {
		c.bagScreen.OnClosed(c.player)
	}
	c.bagScreen = handler
	return handler, nil
}

func (c *MockClient) QuickMove(slotId int) (*network.QuickMoveRes, error) {
	reply, err := c.request(&network.QuickMoveReq{SyncId: c.syncId(), SlotId: int32(slotId)})
	if err != nil {
		return nil, err
	}
	res := &network.QuickMoveRes{}
	if err := c.expect(reply, network.Cmd_QuickMoveRes, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *MockClient) CloseScreen() error {
	reply, err := c.request(&network.CloseScreenReq{SyncId: c.syncId()})
	if err != nil {
		return err
	}
	if err := c.expect(reply, network.Cmd_ScreenClosedRes, &network.ScreenClosedRes{}); err != nil {
		return err
	}
	if c.bagScreen != nil {
		c.bagScreen.OnClosed(c.player)
		c.bagScreen = nil
	}
	return nil
}

func (c *MockClient) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

type message interface {
	Packet() pk.Packet
}

type reply interface {
	Scan(p pk.Packet) error
}

// 发送请求并等待回复
func (c *MockClient) request(req message) (pk.Packet, error) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(replyTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, network.Encode(req.Packet())); err != nil {
		return pk.Packet{}, err
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(replyTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return pk.Packet{}, err
	}
	return network.Decode(data)
}

func (c *MockClient) expect(p pk.Packet, cmd network.PacketCommand, res reply) error {
	switch network.PacketCommand(p.ID) {
	case cmd:
		return res.Scan(p)
	case network.Cmd_ErrorRes:
		errRes := &network.ErrorRes{}
		if err := errRes.Scan(p); err != nil {
			return err
		}
		return &ServerError{Code: errRes.Code, Message: errRes.Message}
	}
	return fmt.Errorf("unexpected packet %v, want %v", network.PacketCommand(p.ID), cmd)
}
