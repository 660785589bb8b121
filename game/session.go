package game

import (
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
	"github.com/fish-tennis/bagserver/screen"
)

// 同步id在[1,maxSyncId]循环,0是玩家自身的界面
const maxSyncId = 100

// 当前打开的界面
type screenHandler interface {
	GetSyncId() int
	QuickMove(p *player.Player, slotIndex int) *item.Stack
	OnClosed(p *player.Player)
}

// 在线玩家
type session struct {
	player *player.Player
	// 玩家自身的界面,一直存在
	playerScreen *screen.PlayerScreenHandler
	// 当前界面,没有打开其他界面时就是playerScreen
	current screenHandler
	syncId  int
}

func newSession(p *player.Player) *session {
	playerScreen := screen.NewPlayerScreenHandler(0, screen.PlayerHandlerType, p)
	return &session{
		player:       p,
		playerScreen: playerScreen,
		current:      playerScreen,
	}
}

func (s *session) nextSyncId() int {
	s.syncId = s.syncId%maxSyncId + 1
	return s.syncId
}

// 关闭当前界面,回到玩家自身的界面
func (s *session) closeCurrent() {
	s.current.OnClosed(s.player)
	s.current = s.playerScreen
}

func (s *session) hasOpenScreen() bool {
	return s.current != screenHandler(s.playerScreen)
}
