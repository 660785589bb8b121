package game

import (
	"errors"

	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/network"
)

var (
	ErrNotABag        = errors.New("equipped item is not a bag")
	ErrStaleScreen    = errors.New("stale screen")
	ErrPlayerNotFound = errors.New("player not found")
	ErrWorldStopped   = errors.New("world stopped")
)

// 错误对应的错误码,发给客户端
func ErrorCode(err error) int32 {
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		return network.ErrCodeNotJoined
	case errors.Is(err, ErrNotABag):
		return network.ErrCodeNotABag
	case errors.Is(err, ErrStaleScreen):
		return network.ErrCodeStaleScreen
	case errors.Is(err, inventory.ErrIndexOutOfRange), errors.Is(err, inventory.ErrMalformedPayload):
		return network.ErrCodeBadRequest
	}
	return network.ErrCodeUnknown
}
