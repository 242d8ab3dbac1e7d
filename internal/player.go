package internal

import (
	"time"
)

type Player struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`

	// Game state
	HasGuessed bool      `json:"has_guessed"`
	JoinedAt   time.Time `json:"joined_at"`

	// Statistics
	TotalGuesses   int `json:"total_guesses"`
	CorrectGuesses int `json:"correct_guesses"`
	TimesDrawn     int `json:"times_drawn"`
}

type PlayerSnapshot struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Score          int    `json:"score"`
	HasGuessed     bool   `json:"has_guessed"`
	IsDrawing      bool   `json:"is_drawing"`
	TotalGuesses   int    `json:"total_guesses"`
	CorrectGuesses int    `json:"correct_guesses"`
	TimesDrawn     int    `json:"times_drawn"`
}

func NewPlayer(id, username string, joinedAt time.Time) *Player {
	return &Player{
		Id:       id,
		Username: username,
		JoinedAt: joinedAt,
	}
}

func (p *Player) ResetRoundState() {
	p.HasGuessed = false
}

// ResetForNewGame clears everything a finished game accumulated.
func (p *Player) ResetForNewGame() {
	p.Score = 0
	p.HasGuessed = false
	p.TotalGuesses = 0
	p.CorrectGuesses = 0
	p.TimesDrawn = 0
}

func CreatePlayerSnapshot(p *Player, drawerID string) PlayerSnapshot {
	return PlayerSnapshot{
		ID:             p.Id,
		Username:       p.Username,
		Score:          p.Score,
		HasGuessed:     p.HasGuessed,
		IsDrawing:      p.Id == drawerID,
		TotalGuesses:   p.TotalGuesses,
		CorrectGuesses: p.CorrectGuesses,
		TimesDrawn:     p.TimesDrawn,
	}
}
