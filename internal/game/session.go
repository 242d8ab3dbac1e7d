package game

import (
	"math/rand/v2"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/common/clock"
	"github.com/scythe504/drawguess-backend/internal/utils"
)

// Session is one room: its roster, its round state and the timer driving
// it. Every exported method and every timer callback runs under mu, so
// mutations of a room never interleave.
type Session struct {
	mu   sync.Mutex
	cfg  Config
	room *internal.Room
	rng  *rand.Rand

	timer *RoundTimer

	// pending reveal-to-next-round transition
	pendingAdvance clock.Timer
	advanceGen     int

	roundGuessed bool
	closed       bool
}

func newSession(roomID string, cfg Config) *Session {
	var src rand.Source
	if cfg.Seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	}

	return &Session{
		cfg:  cfg,
		room: internal.NewRoom(roomID, cfg.MaxRounds, cfg.RoundDurationSeconds),
		rng:  rand.New(src),
	}
}

func (s *Session) ID() string {
	return s.room.Id
}

// AddPlayer joins a player to the room. It never disturbs a running round;
// a late joiner waits for the next one and gets the current canvas.
func (s *Session) AddPlayer(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomClosed
	}
	r := s.room
	if _, exists := r.Players[id]; exists {
		return ErrPlayerAlreadyInRoom
	}
	if r.GetPlayerCount() >= s.cfg.MaxPlayers {
		zap.S().Infof("[AddPlayer] room=%s full (%d/%d), rejecting %s", r.Id, r.GetPlayerCount(), s.cfg.MaxPlayers, id)
		return ErrRoomFull
	}

	r.AddPlayer(internal.NewPlayer(id, name, s.cfg.Clock.Now()))
	zap.S().Infof("[AddPlayer] room=%s player=%s (%s) joined, players=%d", r.Id, id, name, r.GetPlayerCount())

	s.broadcastRoomStateLocked()
	return nil
}

// RemovePlayer drops a player and returns how many remain. When the last
// player leaves the session closes itself; the registry then forgets it.
func (s *Session) RemovePlayer(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.room
	p := r.RemovePlayer(id)
	if p == nil {
		return r.GetPlayerCount(), ErrPlayerNotFound
	}
	remaining := r.GetPlayerCount()
	zap.S().Infof("[RemovePlayer] room=%s player=%s (%s) left, remaining=%d", r.Id, id, p.Username, remaining)

	if remaining == 0 {
		s.closeLocked()
		return 0, nil
	}

	s.cfg.Transport.SendToRoom(r.Id, internal.EventPlayerLeft, internal.PlayerLeftData{
		PlayerID:       id,
		Username:       p.Username,
		RemainingCount: remaining,
	})

	wasDrawer := id == r.CurrentDrawer
	if wasDrawer {
		r.CurrentDrawer = ""
	}

	if r.RoundActive {
		switch {
		case wasDrawer || !r.CanStartGame():
			// No word reveal; the next round (or game end) follows at once.
			s.endRoundLocked(internal.ReasonPlayerLeft)
			s.advanceRoundLocked()
			return remaining, nil
		case r.HasEveryoneGuessed():
			s.endRoundLocked(internal.ReasonAllGuessed)
			s.scheduleAdvanceLocked()
		}
	}

	s.broadcastRoomStateLocked()
	return remaining, nil
}

func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.GetPlayerCount()
}

func (s *Session) IsEmpty() bool {
	return s.PlayerCount() == 0
}

func (s *Session) Phase() internal.GamePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase
}

// Joinable reports whether a newcomer can be placed here by the lobby
// lookup: room waiting in the lobby with a free seat.
func (s *Session) Joinable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.room.Phase == internal.PhaseLobby && s.room.GetPlayerCount() < s.cfg.MaxPlayers
}

// Snapshot renders the room as seen by viewerID. Only the drawer sees the
// word while the round runs; everyone sees it during the reveal.
func (s *Session) Snapshot(viewerID string) internal.RoomStateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(viewerID)
}

func (s *Session) snapshotLocked(viewerID string) internal.RoomStateData {
	r := s.room

	players := make([]internal.PlayerSnapshot, 0, len(r.PlayerOrder))
	for _, p := range r.PlayersInOrder() {
		players = append(players, internal.CreatePlayerSnapshot(p, r.CurrentDrawer))
	}

	state := internal.RoomStateData{
		RoomID:         r.Id,
		Phase:          r.Phase,
		Players:        players,
		CurrentDrawer:  r.CurrentDrawer,
		RoundNumber:    r.RoundNumber,
		MaxRounds:      r.MaxRounds,
		RoundDuration:  r.RoundDuration,
		TimeRemaining:  r.TimeRemaining,
		RoundActive:    r.RoundActive,
		HasCustomWords: len(r.CustomWords) > 0,
		Canvas:         r.Canvas.Snapshot(),
	}

	if r.Word != "" {
		state.WordLength = utils.WordLength(r.Word)
		if viewerID == r.CurrentDrawer || r.Phase == internal.PhaseRevealing {
			state.Word = r.Word
		} else {
			state.HiddenWord = utils.GetMaskedWord(r.Word, r.RevealedIndices)
		}
	}

	return state
}

// broadcastRoomStateLocked sends each player their own view of the room.
func (s *Session) broadcastRoomStateLocked() {
	for _, id := range s.room.PlayerOrder {
		s.cfg.Transport.SendToPlayer(id, internal.EventRoomState, s.snapshotLocked(id))
	}
}

// Close stops the timer and any pending transition. Further calls on the
// session fail with ErrRoomClosed or do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.room.RoundActive = false
	s.cancelTimerLocked()
	s.cancelPendingAdvanceLocked()
	zap.S().Infof("[Close] room=%s session closed", s.room.Id)
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
}

func (s *Session) cancelPendingAdvanceLocked() {
	if s.pendingAdvance != nil {
		s.pendingAdvance.Stop()
		s.pendingAdvance = nil
	}
	s.advanceGen++
}

// recoverCallback keeps a panic in a timer callback from killing the
// process. When repair is set it runs under the lock afterwards so the room
// is not left halfway through a transition.
func (s *Session) recoverCallback(name string, repair func()) {
	rec := recover()
	if rec == nil {
		return
	}
	zap.S().Errorf("[%s] room=%s recovered panic: %v\n%s", name, s.room.Id, rec, debug.Stack())
	if repair == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Errorf("[%s] room=%s repair failed: %v", name, s.room.Id, rec)
		}
	}()
	if !s.closed {
		repair()
	}
}

// finishExpiredRoundLocked ends a round whose timer ran out but whose
// expiry did not complete, then makes sure the next round is scheduled.
func (s *Session) finishExpiredRoundLocked(t *RoundTimer) {
	r := s.room
	if r.RoundActive && s.timer == t {
		r.TimeRemaining = 0
		s.endRoundLocked(internal.ReasonTimeExpired)
	}
	if r.Phase == internal.PhaseRevealing && s.pendingAdvance == nil {
		s.scheduleAdvanceLocked()
	}
	s.broadcastRoomStateLocked()
}
