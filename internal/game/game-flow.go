package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/utils"
)

const archiveTimeout = 5 * time.Second

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

// StartGame begins round 1. It is rejected without side effects while a
// round is running or revealing, and after a game ended until the room is
// reset.
func (s *Session) StartGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomClosed
	}

	r := s.room
	switch r.Phase {
	case internal.PhaseDrawing, internal.PhaseRevealing:
		zap.S().Debugf("[StartGame] room=%s rejected, phase=%s", r.Id, r.Phase)
		return ErrRoundAlreadyActive
	case internal.PhaseEnded:
		return ErrInvalidPhase
	}
	if !r.CanStartGame() {
		zap.S().Debugf("[StartGame] room=%s not enough players (%d/%d)", r.Id, r.GetPlayerCount(), internal.MinPlayersToStart)
		return ErrInsufficientPlayers
	}

	r.RoundNumber = 0
	r.RoundHistory = make([]internal.RoundRecord, 0)
	r.Word = ""
	zap.S().Infof("[StartGame] room=%s starting with %d players, %d rounds", r.Id, r.GetPlayerCount(), r.MaxRounds)

	s.advanceRoundLocked()
	return nil
}

// advanceRoundLocked archives the finished round and starts the next one,
// or ends the game once maxRounds is exceeded or too few players remain.
func (s *Session) advanceRoundLocked() {
	r := s.room

	s.cancelTimerLocked()
	s.cancelPendingAdvanceLocked()

	if r.Word != "" {
		r.RoundHistory = append(r.RoundHistory, internal.RoundRecord{
			RoundNumber: r.RoundNumber,
			Word:        r.Word,
			Canvas:      r.Canvas.Snapshot(),
			DrawerName:  r.CurrentDrawerName,
			WasGuessed:  s.roundGuessed,
		})
		r.Word = ""
	}

	r.RoundNumber++
	if r.RoundNumber > r.MaxRounds || !r.CanStartGame() {
		s.endGameLocked()
		return
	}

	// Reset per-round state
	r.ResetPlayerGuessState()
	r.Canvas.Clear()
	r.RevealedIndices = make(map[int]bool)
	s.roundGuessed = false

	drawer := r.DrawerForRound(r.RoundNumber)
	word, err := s.cfg.Words.SelectWord(r.CustomWords)
	if err != nil {
		zap.S().Errorf("[advanceRound] room=%s cannot select word: %v", r.Id, err)
		s.returnToLobbyLocked()
		s.cfg.Transport.SendToRoom(r.Id, internal.EventError, internal.ErrorData{Code: ErrEmptyWordPool.Code()})
		return
	}

	r.CurrentDrawer = drawer.Id
	r.CurrentDrawerName = drawer.Username
	drawer.TimesDrawn++
	r.Word = word
	r.Phase = internal.PhaseDrawing
	r.RoundActive = true
	r.TimeRemaining = r.RoundDuration

	s.startTimerLocked()

	zap.S().Infof("[advanceRound] room=%s round %d/%d drawer=%s", r.Id, r.RoundNumber, r.MaxRounds, drawer.Id)

	s.cfg.Transport.SendToRoom(r.Id, internal.EventRoundStarted, internal.RoundStartedData{
		Drawer:      drawer.Id,
		DrawerName:  drawer.Username,
		HiddenWord:  utils.GetMaskedWord(word, nil),
		RoundNumber: r.RoundNumber,
		MaxRounds:   r.MaxRounds,
		TimeLimit:   r.RoundDuration,
	})
	s.cfg.Transport.SendToPlayer(drawer.Id, internal.EventYourWord, internal.YourWordData{Word: word})
	s.broadcastRoomStateLocked()
}

// endRoundLocked stops the running round and reveals it. It reports false
// when there was no active round, which makes every ending path safe to race.
func (s *Session) endRoundLocked(reason internal.RoundEndReason) bool {
	r := s.room
	if !r.RoundActive {
		return false
	}

	r.RoundActive = false
	r.Phase = internal.PhaseRevealing
	s.cancelTimerLocked()

	data := internal.RoundEndedData{
		RoundNumber: r.RoundNumber,
		Scores:      FinalScores(r),
		Reason:      reason,
	}
	// A drawer leaving doesn't give the word away.
	if reason != internal.ReasonPlayerLeft {
		data.Word = r.Word
	}

	zap.S().Infof("[endRound] room=%s round %d ended: %s", r.Id, r.RoundNumber, reason)
	s.cfg.Transport.SendToRoom(r.Id, internal.EventRoundEnded, data)
	return true
}

// scheduleAdvanceLocked starts the next round after the reveal delay.
func (s *Session) scheduleAdvanceLocked() {
	s.cancelPendingAdvanceLocked()
	gen := s.advanceGen
	s.pendingAdvance = s.cfg.Clock.AfterFunc(s.cfg.RevealDelay, func() {
		s.onRevealDone(gen)
	})
}

func (s *Session) onRevealDone(gen int) {
	defer s.recoverCallback("onRevealDone", nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.advanceGen || s.room.Phase != internal.PhaseRevealing {
		return
	}
	s.pendingAdvance = nil
	s.advanceRoundLocked()
}

func (s *Session) endGameLocked() {
	r := s.room

	s.cancelTimerLocked()
	s.cancelPendingAdvanceLocked()
	r.RoundActive = false
	r.Phase = internal.PhaseEnded
	r.CurrentDrawer = ""
	r.CurrentDrawerName = ""
	r.Word = ""
	r.Canvas.Clear()
	r.RevealedIndices = make(map[int]bool)
	r.TimeRemaining = 0

	scores := FinalScores(r)
	history := make([]internal.RoundRecord, len(r.RoundHistory))
	copy(history, r.RoundHistory)

	zap.S().Infof("[endGame] room=%s game over after %d rounds", r.Id, len(history))
	s.cfg.Transport.SendToRoom(r.Id, internal.EventGameEnded, internal.GameEndedData{
		FinalScores:  scores,
		RoundHistory: history,
	})
	s.broadcastRoomStateLocked()

	result := internal.GameResult{
		RoomID:     r.Id,
		FinishedAt: s.cfg.Clock.Now(),
		Rounds:     len(history),
		Scores:     scores,
		History:    history,
	}
	archiver := s.cfg.Archiver
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := archiver.SaveGameResult(ctx, result); err != nil {
			zap.S().Warnf("[endGame] room=%s archiving result failed: %v", result.RoomID, err)
		}
	}()
}

func (s *Session) returnToLobbyLocked() {
	r := s.room
	s.cancelTimerLocked()
	s.cancelPendingAdvanceLocked()
	r.Phase = internal.PhaseLobby
	r.RoundActive = false
	r.CurrentDrawer = ""
	r.CurrentDrawerName = ""
	r.Word = ""
	r.RoundNumber = 0
	r.TimeRemaining = r.RoundDuration
	r.Canvas.Clear()
	r.RevealedIndices = make(map[int]bool)
	r.ResetPlayerGuessState()
}

// ResetForNewGame zeroes scores and history and returns to the lobby. It is
// only valid between games.
func (s *Session) ResetForNewGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomClosed
	}
	r := s.room
	if r.Phase != internal.PhaseLobby && r.Phase != internal.PhaseEnded {
		return ErrInvalidPhase
	}

	s.returnToLobbyLocked()
	r.RoundHistory = make([]internal.RoundRecord, 0)
	for _, p := range r.Players {
		p.ResetForNewGame()
	}

	zap.S().Infof("[ResetForNewGame] room=%s reset", r.Id)
	s.broadcastRoomStateLocked()
	return nil
}

// =============================================================================
// TIMER CALLBACKS
// =============================================================================

func (s *Session) startTimerLocked() {
	s.cancelTimerLocked()

	var t *RoundTimer
	t = NewRoundTimer(s.cfg.Clock, s.room.RoundDuration, s.cfg.HintOffsets, TimerHooks{
		OnTick:   func(rem int) { s.onTimerTick(t, rem) },
		OnHint:   func(rem int) { s.onTimerHint(t, rem) },
		OnExpire: func() { s.onTimerExpire(t) },
	})
	s.timer = t
	t.Start()
}

// liveTimerLocked guards callbacks from a timer that has since been
// replaced or cancelled.
func (s *Session) liveTimerLocked(t *RoundTimer) bool {
	return !s.closed && s.timer == t && s.room.RoundActive
}

func (s *Session) onTimerTick(t *RoundTimer, remaining int) {
	defer s.recoverCallback("onTimerTick", nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveTimerLocked(t) {
		return
	}
	s.room.TimeRemaining = remaining
	s.cfg.Transport.SendToRoom(s.room.Id, internal.EventTimerTick, internal.TimerTickData{SecondsRemaining: remaining})
}

func (s *Session) onTimerHint(t *RoundTimer, remaining int) {
	defer s.recoverCallback("onTimerHint", nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveTimerLocked(t) {
		return
	}
	s.revealHintLocked()
}

func (s *Session) onTimerExpire(t *RoundTimer) {
	defer s.recoverCallback("onTimerExpire", func() { s.finishExpiredRoundLocked(t) })

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveTimerLocked(t) {
		return
	}
	s.room.TimeRemaining = 0
	if s.endRoundLocked(internal.ReasonTimeExpired) {
		s.scheduleAdvanceLocked()
	}
}

// revealHintLocked discloses one random unrevealed letter to each guesser.
// Spaces are never picked. Nothing happens once every letter is out.
func (s *Session) revealHintLocked() {
	r := s.room
	runes := []rune(r.Word)

	candidates := make([]int, 0, len(runes))
	for i, ch := range runes {
		if ch != ' ' && !r.RevealedIndices[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}

	idx := candidates[s.rng.IntN(len(candidates))]
	r.RevealedIndices[idx] = true

	hint := internal.LetterHintData{Index: idx, Letter: string(runes[idx])}
	for _, id := range r.PlayerOrder {
		if id == r.CurrentDrawer {
			continue
		}
		s.cfg.Transport.SendToPlayer(id, internal.EventLetterHint, hint)
	}
	zap.S().Debugf("[revealHint] room=%s revealed index %d (%d/%d)", r.Id, idx, len(r.RevealedIndices), len(runes))
}
