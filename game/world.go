package game

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fish-tennis/bagserver/cfg"
	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/network"
	"github.com/fish-tennis/bagserver/player"
	"github.com/fish-tennis/bagserver/screen"
	"github.com/fish-tennis/gentity/util"
)

// 在逻辑协程里执行的请求
type request struct {
	fn   func()
	done chan struct{}
}

// 服务器的逻辑世界
// 玩家,界面,背包都只在Run所在的协程里访问
type World struct {
	registry *item.Registry
	store    db.BagContainerLookup
	config   *cfg.ServerConfig

	sessions map[int64]*session

	inbox   chan request
	stopped chan struct{}

	updateInterval time.Duration
	updateCount    int64
}

func NewWorld(registry *item.Registry, store db.BagContainerLookup, config *cfg.ServerConfig) *World {
	updateInterval := config.UpdateInterval
	if updateInterval <= 0 {
		updateInterval = time.Second
	}
	return &World{
		registry:       registry,
		store:          store,
		config:         config,
		sessions:       make(map[int64]*session),
		inbox:          make(chan request, 64),
		stopped:        make(chan struct{}),
		updateInterval: updateInterval,
	}
}

// 逻辑协程,ctx结束时关闭所有打开的界面(保存背包)后退出
func (w *World) Run(ctx context.Context) {
	slog.Info("WorldRun")
	updateTicker := time.NewTicker(w.updateInterval)
	defer func() {
		updateTicker.Stop()
		w.closeAll()
		close(w.stopped)
		slog.Info("WorldStop")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.inbox:
			req.fn()
			close(req.done)
		case <-updateTicker.C:
			w.onUpdate()
			w.updateCount++
		}
	}
}

// 逻辑协程已退出
func (w *World) Stopped() <-chan struct{} {
	return w.stopped
}

// 把fn交给逻辑协程执行,并等待执行完
func (w *World) call(ctx context.Context, fn func()) error {
	req := request{
		fn:   fn,
		done: make(chan struct{}),
	}
	select {
	case w.inbox <- req:
	case <-w.stopped:
		return ErrWorldStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-w.stopped:
		return ErrWorldStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *World) onUpdate() {
	if w.updateCount%60 == 0 {
		slog.Debug("WorldUpdate", "updateCount", w.updateCount, "online", len(w.sessions))
	}
}

func (w *World) closeAll() {
	for playerId, s := range w.sessions {
		if s.hasOpenScreen() {
			s.closeCurrent()
		}
		slog.Info("PlayerExit", "playerId", playerId)
	}
	clear(w.sessions)
}

func (w *World) getSession(playerId int64) (*session, error) {
	s, ok := w.sessions[playerId]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrPlayerNotFound, playerId)
	}
	return s, nil
}

// 新玩家加入,发放初始物品
func (w *World) Join(ctx context.Context, name string) (*network.JoinRes, error) {
	var res *network.JoinRes
	err := w.call(ctx, func() {
		p := player.NewPlayer(util.GenUniqueId(), name, false)
		w.giveStarterKit(p)
		w.sessions[p.GetId()] = newSession(p)
		res = &network.JoinRes{
			PlayerId:  p.GetId(),
			Equipment: equipmentOf(p),
		}
		slog.Info("PlayerJoin", "playerId", p.GetId(), "name", name)
	})
	return res, err
}

func (w *World) giveStarterKit(p *player.Player) {
	for _, starter := range w.config.StarterKit {
		stack, err := w.registry.NewStack(starter.ItemId, starter.Count)
		if err != nil {
			slog.Error("StarterKitErr", "itemId", starter.ItemId, "err", err)
			continue
		}
		if err := p.GetInventory().Set(starter.Index, stack); err != nil {
			slog.Error("StarterKitErr", "itemId", starter.ItemId, "index", starter.Index, "err", err)
		}
	}
}

func equipmentOf(p *player.Player) []network.EquippedItem {
	var equipment []network.EquippedItem
	for slot := item.MainHand; slot.IsValid(); slot++ {
		stack := p.EquippedStack(slot)
		if stack.IsEmpty() {
			continue
		}
		equipment = append(equipment, network.EquippedItem{
			Slot:   int32(slot),
			ItemId: stack.Def.Id,
			Count:  int32(stack.Count),
		})
	}
	return equipment
}

// 玩家离开,关闭打开的界面
func (w *World) Leave(ctx context.Context, playerId int64) error {
	var err error
	callErr := w.call(ctx, func() {
		var s *session
		if s, err = w.getSession(playerId); err != nil {
			return
		}
		if s.hasOpenScreen() {
			s.closeCurrent()
		}
		delete(w.sessions, playerId)
		slog.Info("PlayerLeave", "playerId", playerId)
	})
	if callErr != nil {
		return callErr
	}
	return err
}

// 打开装备槽位上的背包
// 已经打开的背包界面先关闭
func (w *World) OpenBag(ctx context.Context, playerId int64, slot item.EquipmentSlot) (*network.OpenScreenRes, error) {
	var (
		res *network.OpenScreenRes
		err error
	)
	callErr := w.call(ctx, func() {
		res, err = w.openBag(playerId, slot)
	})
	if callErr != nil {
		return nil, callErr
	}
	return res, err
}

func (w *World) openBag(playerId int64, slot item.EquipmentSlot) (*network.OpenScreenRes, error) {
	s, err := w.getSession(playerId)
	if err != nil {
		return nil, err
	}
	if !slot.IsValid() {
		return nil, fmt.Errorf("%w: equipment slot %v", inventory.ErrIndexOutOfRange, int32(slot))
	}
	p := s.player
	stack := p.EquippedStack(slot)
	spec, ok := stack.Bag()
	if !ok {
		return nil, fmt.Errorf("%w: %v in %v", ErrNotABag, stack, slot)
	}
	// 客户端按背包配置的槽位找物品,只能从这个槽位打开
	if spec.Slot != slot {
		return nil, fmt.Errorf("%w: %v in %v, want %v", ErrNotABag, stack, slot, spec.Slot)
	}
	if s.hasOpenScreen() {
		s.closeCurrent()
	}
	config := inventory.ConfigFromSpec(spec)
	config.SaveAllowed = config.SaveAllowed && w.config.Bag.SaveAllowed
	config.LoadAllowed = config.LoadAllowed && w.config.Bag.LoadAllowed
	factory := screen.NewBagScreenFactory(inventory.NewBagInventory(stack, config, w.store))
	handler, ok := factory.CreateMenu(s.nextSyncId(), p)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotABag, stack)
	}
	var payload bytes.Buffer
	if err := factory.WriteScreenOpeningData(&payload); err != nil {
		handler.OnClosed(p)
		return nil, err
	}
	s.current = handler
	slog.Debug("OpenBag", "playerId", playerId, "syncId", handler.GetSyncId(), "item", stack)
	return &network.OpenScreenRes{
		SyncId:  int32(handler.GetSyncId()),
		Type:    string(handler.GetType()),
		Title:   factory.DisplayName(),
		Payload: payload.Bytes(),
	}, nil
}

// shift+点击当前界面的格子
func (w *World) QuickMove(ctx context.Context, playerId int64, syncId, slotId int) (*network.QuickMoveRes, error) {
	var (
		res *network.QuickMoveRes
		err error
	)
	callErr := w.call(ctx, func() {
		res, err = w.quickMove(playerId, syncId, slotId)
	})
	if callErr != nil {
		return nil, callErr
	}
	return res, err
}

func (w *World) quickMove(playerId int64, syncId, slotId int) (*network.QuickMoveRes, error) {
	s, err := w.getSession(playerId)
	if err != nil {
		return nil, err
	}
	if s.current.GetSyncId() != syncId {
		return nil, fmt.Errorf("%w: syncId %v, current %v", ErrStaleScreen, syncId, s.current.GetSyncId())
	}
	res := &network.QuickMoveRes{
		SyncId: int32(syncId),
		SlotId: int32(slotId),
	}
	if moved := s.current.QuickMove(s.player, slotId); !moved.IsEmpty() {
		res.Moved = true
		res.ItemId = moved.Def.Id
		res.Count = int32(moved.Count)
	}
	return res, nil
}

// 关闭界面
func (w *World) CloseScreen(ctx context.Context, playerId int64, syncId int) (*network.ScreenClosedRes, error) {
	var err error
	callErr := w.call(ctx, func() {
		var s *session
		if s, err = w.getSession(playerId); err != nil {
			return
		}
		if s.current.GetSyncId() != syncId {
			err = fmt.Errorf("%w: syncId %v, current %v", ErrStaleScreen, syncId, s.current.GetSyncId())
			return
		}
		s.closeCurrent()
		slog.Debug("CloseScreen", "playerId", playerId, "syncId", syncId)
	})
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, err
	}
	return &network.ScreenClosedRes{SyncId: int32(syncId)}, nil
}

// 在逻辑协程里访问玩家,只读
func (w *World) ViewPlayer(ctx context.Context, playerId int64, fn func(p *player.Player)) error {
	var err error
	callErr := w.call(ctx, func() {
		var s *session
		if s, err = w.getSession(playerId); err != nil {
			return
		}
		fn(s.player)
	})
	if callErr != nil {
		return callErr
	}
	return err
}
