package game

import (
	"context"

	"github.com/scythe504/drawguess-backend/internal"
)

// Transport delivers outbound events. Implementations must not block: the
// session calls them while holding its lock.
type Transport interface {
	SendToPlayer(playerID, event string, payload any)
	SendToRoom(roomID, event string, payload any)
	SendToRoomExcept(roomID, senderID, event string, payload any)
}

// Archiver stores the result of a finished game.
type Archiver interface {
	SaveGameResult(ctx context.Context, result internal.GameResult) error
}

type noopArchiver struct{}

func (noopArchiver) SaveGameResult(context.Context, internal.GameResult) error { return nil }
