package game

import (
	"slices"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/utils"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================

// RecordDrawingEvent stores a drawing event from the current drawer and
// relays it to everyone else. Events from anyone else, or outside a round,
// are refused with ErrNotAuthorizedDrawer; they are expected after a drawer
// change so callers usually drop the error.
func (s *Session) RecordDrawingEvent(playerID string, event internal.DrawEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authorizedDrawerLocked(playerID) {
		return ErrNotAuthorizedDrawer
	}

	s.room.Canvas.Append(event)
	s.cfg.Transport.SendToRoomExcept(s.room.Id, playerID, internal.EventDrawEvent, event)
	return nil
}

// ClearCanvas wipes the round's drawing. Same authorization as
// RecordDrawingEvent.
func (s *Session) ClearCanvas(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authorizedDrawerLocked(playerID) {
		return ErrNotAuthorizedDrawer
	}

	zap.S().Debugf("[ClearCanvas] room=%s cleared %d events", s.room.Id, s.room.Canvas.Len())
	s.room.Canvas.Clear()
	s.cfg.Transport.SendToRoom(s.room.Id, internal.EventCanvasCleared, struct{}{})
	return nil
}

func (s *Session) authorizedDrawerLocked(playerID string) bool {
	r := s.room
	return !s.closed && r.RoundActive && playerID != "" && playerID == r.CurrentDrawer
}

// =============================================================================
// WORD POOL
// =============================================================================

// UpdateWordPool replaces the room's custom words. An empty list falls back
// to the default pool. The change applies from the next round.
func (s *Session) UpdateWordPool(playerID string, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomClosed
	}
	r := s.room
	if r.Players[playerID] == nil {
		return ErrPlayerNotFound
	}

	r.CustomWords = utils.CleanWordList(words)
	zap.S().Infof("[UpdateWordPool] room=%s player=%s set %d custom words", r.Id, playerID, len(r.CustomWords))

	s.sendWordPoolLocked(playerID)
	s.broadcastRoomStateLocked()
	return nil
}

// RequestWordPool sends the pool in use to the requesting player only.
func (s *Session) RequestWordPool(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomClosed
	}
	if s.room.Players[playerID] == nil {
		return ErrPlayerNotFound
	}

	s.sendWordPoolLocked(playerID)
	return nil
}

func (s *Session) sendWordPoolLocked(playerID string) {
	r := s.room
	custom := len(r.CustomWords) > 0

	words := slices.Clone(r.WordPool(s.cfg.Words.Defaults()))
	s.cfg.Transport.SendToPlayer(playerID, internal.EventWordPool, internal.WordPoolData{
		Words:  words,
		Custom: custom,
	})
}
