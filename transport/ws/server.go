package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/fish-tennis/bagserver/game"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/network"
	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 5 * time.Second
	readTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
	maxMessageSize   = 64 * 1024
)

// websocket连接接入World
// 每个连接一个协程,按收到的顺序处理请求并回复
type Server struct {
	world    *game.World
	upgrader websocket.Upgrader
}

func NewServer(w *game.World) *Server {
	return &Server{
		world: w,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("UpgradeErr", "remoteAddr", r.RemoteAddr, "err", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(maxMessageSize)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		playerId, ok := s.handshake(ctx, conn)
		if !ok {
			return
		}
		defer func() {
			// 连接已经断开,用新的ctx保证能关闭界面
			leaveCtx, leaveCancel := context.WithTimeout(context.Background(), writeTimeout)
			defer leaveCancel()
			if err := s.world.Leave(leaveCtx, playerId); err != nil {
				slog.Warn("LeaveErr", "playerId", playerId, "err", err)
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Debug("ReadMessageErr", "playerId", playerId, "err", err)
				}
				return
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			reply := s.dispatch(ctx, playerId, data)
			if err := writePacket(conn, reply); err != nil {
				slog.Debug("WriteMessageErr", "playerId", playerId, "err", err)
				return
			}
		}
	}
}

// 第一条消息必须是JoinReq
func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (int64, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return 0, false
	}
	p, err := network.Decode(data)
	req := &network.JoinReq{}
	if err == nil && network.PacketCommand(p.ID) == network.Cmd_JoinReq {
		err = req.Scan(p)
	} else if err == nil {
		err = errors.New("expected JoinReq")
	}
	if err != nil {
		slog.Warn("HandshakeErr", "remoteAddr", conn.RemoteAddr().String(), "err", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected JoinReq"),
			time.Now().Add(time.Second))
		return 0, false
	}
	res, err := s.world.Join(ctx, req.Name)
	if err != nil {
		_ = writePacket(conn, errorPacket(err))
		return 0, false
	}
	if err := writePacket(conn, res.Packet()); err != nil {
		// 加入成功但是发不出去
		_ = s.world.Leave(context.Background(), res.PlayerId)
		return 0, false
	}
	return res.PlayerId, true
}

func (s *Server) dispatch(ctx context.Context, playerId int64, data []byte) pk.Packet {
	p, err := network.Decode(data)
	if err != nil {
		return badRequest(err)
	}
	cmd := network.PacketCommand(p.ID)
	switch cmd {
	case network.Cmd_OpenBagReq:
		req := &network.OpenBagReq{}
		if err := req.Scan(p); err != nil {
			return badRequest(err)
		}
		res, err := s.world.OpenBag(ctx, playerId, item.EquipmentSlot(req.Slot))
		if err != nil {
			return errorPacket(err)
		}
		return res.Packet()
	case network.Cmd_QuickMoveReq:
		req := &network.QuickMoveReq{}
		if err := req.Scan(p); err != nil {
			return badRequest(err)
		}
		res, err := s.world.QuickMove(ctx, playerId, int(req.SyncId), int(req.SlotId))
		if err != nil {
			return errorPacket(err)
		}
		return res.Packet()
	case network.Cmd_CloseScreenReq:
		req := &network.CloseScreenReq{}
		if err := req.Scan(p); err != nil {
			return badRequest(err)
		}
		res, err := s.world.CloseScreen(ctx, playerId, int(req.SyncId))
		if err != nil {
			return errorPacket(err)
		}
		return res.Packet()
	}
	slog.Warn("UnknownPacket", "playerId", playerId, "cmd", cmd)
	return badRequest(errors.New("unknown packet " + cmd.String()))
}

func errorPacket(err error) pk.Packet {
	res := &network.ErrorRes{
		Code:    game.ErrorCode(err),
		Message: err.Error(),
	}
	return res.Packet()
}

func badRequest(err error) pk.Packet {
	res := &network.ErrorRes{
		Code:    network.ErrCodeBadRequest,
		Message: err.Error(),
	}
	return res.Packet()
}

func writePacket(conn *websocket.Conn, p pk.Packet) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, network.Encode(p))
}
