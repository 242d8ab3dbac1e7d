package game

import (
	"strings"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

type GuessResult struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
}

// SubmitGuess checks text against the secret word. Anything that isn't a
// scoring guess comes back as {false, 0}; wrong guesses are relayed as chat.
// Text that matches the word is never relayed, so the drawer or a player
// who already found it can't leak it.
func (s *Session) SubmitGuess(playerID, text string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return GuessResult{}, ErrRoomClosed
	}

	r := s.room
	player := r.Players[playerID]
	if player == nil {
		return GuessResult{}, ErrPlayerNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return GuessResult{}, nil
	}

	if !r.RoundActive {
		s.relayChatLocked(player, text)
		return GuessResult{}, nil
	}

	isMatch := matchesWord(text, r.Word)

	if playerID == r.CurrentDrawer {
		if isMatch {
			zap.S().Debugf("[SubmitGuess] room=%s drawer %s typed the word, dropped", r.Id, playerID)
			return GuessResult{}, nil
		}
		s.relayChatLocked(player, text)
		return GuessResult{}, nil
	}

	if player.HasGuessed {
		zap.S().Debugf("[SubmitGuess] room=%s player=%s already guessed, ignoring", r.Id, playerID)
		return GuessResult{}, ErrAlreadyGuessedCorrectly
	}

	player.TotalGuesses++
	if !isMatch {
		s.relayChatLocked(player, text)
		return GuessResult{}, nil
	}

	// Correct guess
	points := Score(r.TimeRemaining, r.RoundDuration)
	player.HasGuessed = true
	player.CorrectGuesses++
	player.Score += points
	if drawer := r.Players[r.CurrentDrawer]; drawer != nil {
		drawer.Score += internal.DrawerBonus
	}
	s.roundGuessed = true

	zap.S().Infof("[SubmitGuess] room=%s player=%s guessed correctly for %d points", r.Id, playerID, points)

	s.cfg.Transport.SendToRoom(r.Id, internal.EventCorrectGuess, internal.CorrectGuessData{
		PlayerID:   player.Id,
		PlayerName: player.Username,
		Points:     points,
		Score:      player.Score,
	})

	if r.HasEveryoneGuessed() {
		if s.endRoundLocked(internal.ReasonAllGuessed) {
			s.scheduleAdvanceLocked()
		}
	}
	s.broadcastRoomStateLocked()

	return GuessResult{Correct: true, Points: points}, nil
}

func (s *Session) relayChatLocked(player *internal.Player, text string) {
	s.cfg.Transport.SendToRoom(s.room.Id, internal.EventChatMessage, internal.ChatMessageData{
		PlayerID:   player.Id,
		PlayerName: player.Username,
		Text:       text,
	})
}
