package game

import (
	"slices"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/utils"
)

// Score awards a correct guess: BasePoints plus a speed bonus proportional
// to the time left, capped at BonusCap.
func Score(timeRemaining, roundDuration int) int {
	if roundDuration <= 0 {
		return internal.BasePoints
	}
	timeRemaining = min(max(timeRemaining, 0), roundDuration)

	// integer floor of t/D*cap
	return internal.BasePoints + timeRemaining*internal.BonusCap/roundDuration
}

// FinalScores builds the leaderboard, highest score first. Ties keep join
// order so the output is stable.
func FinalScores(room *internal.Room) []internal.ScoreEntry {
	entries := make([]internal.ScoreEntry, 0, len(room.Players))
	for _, player := range room.PlayersInOrder() {
		entries = append(entries, internal.ScoreEntry{
			PlayerID: player.Id,
			Username: player.Username,
			Score:    player.Score,
		})
	}

	slices.SortStableFunc(entries, func(a, b internal.ScoreEntry) int {
		return b.Score - a.Score
	})
	for idx := range entries {
		entries[idx].Position = idx + 1
	}

	return entries
}

// matchesWord compares a guess against the secret word ignoring case and
// surrounding whitespace.
func matchesWord(guess, word string) bool {
	return word != "" && utils.NormalizeGuess(guess) == utils.NormalizeGuess(word)
}
