package internal

import (
	"time"
)

const (
	DefaultRoundDurationSeconds = 60
	DefaultMaxRounds            = 5
	RevealPhaseDuration         = 3 * time.Second
	MaxPlayersPerRoom           = 8
	MinPlayersToStart           = 2

	// Points
	BasePoints  = 100
	BonusCap    = 50
	DrawerBonus = 25
)

// DefaultHintOffsets are the seconds-remaining marks at which one letter of
// the word is revealed to guessers.
var DefaultHintOffsets = []int{30, 15}

type GamePhase string

const (
	PhaseLobby     GamePhase = "lobby"
	PhaseDrawing   GamePhase = "drawing"
	PhaseRevealing GamePhase = "revealing"
	PhaseEnded     GamePhase = "ended"
)

type RoundEndReason string

const (
	ReasonTimeExpired RoundEndReason = "time_expired"
	ReasonAllGuessed  RoundEndReason = "all_guessed"
	ReasonPlayerLeft  RoundEndReason = "player_left"
)

// RoundRecord is the captured summary of a finished round.
type RoundRecord struct {
	RoundNumber int         `json:"round_number"`
	Word        string      `json:"word"`
	Canvas      []DrawEvent `json:"canvas"`
	DrawerName  string      `json:"drawer_name"`
	WasGuessed  bool        `json:"was_guessed"`
}

type Room struct {
	Id      string
	Players map[string]*Player

	// Game State
	Phase             GamePhase `json:"phase"`
	CurrentDrawer     string    `json:"current_drawer"`
	CurrentDrawerName string    `json:"current_drawer_name"`
	Word              string    `json:"word"`
	RoundActive       bool      `json:"round_active"`

	// Round Management
	RoundNumber   int           `json:"round_number"`
	MaxRounds     int           `json:"max_rounds"`
	RoundDuration int           `json:"round_duration"`
	TimeRemaining int           `json:"time_remaining"`
	RoundHistory  []RoundRecord `json:"round_history"`

	// Player Order and Management
	PlayerOrder []string `json:"player_order"`

	// Word pool overriding the default one when non-empty
	CustomWords []string `json:"custom_words"`

	// Hint state, indices are rune positions in Word
	RevealedIndices map[int]bool `json:"revealed_indices"`

	// Drawing Canvas State
	Canvas CanvasLog `json:"canvas"`
}

func NewRoom(id string, maxRounds, roundDuration int) *Room {
	return &Room{
		Id:              id,
		Players:         make(map[string]*Player),
		PlayerOrder:     make([]string, 0),
		Phase:           PhaseLobby,
		MaxRounds:       maxRounds,
		RoundDuration:   roundDuration,
		TimeRemaining:   roundDuration,
		RoundHistory:    make([]RoundRecord, 0),
		CustomWords:     make([]string, 0),
		RevealedIndices: make(map[int]bool),
	}
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

// ScoreEntry is one line of a leaderboard.
type ScoreEntry struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// GameResult is what gets archived when a game ends.
type GameResult struct {
	RoomID     string        `json:"room_id"`
	FinishedAt time.Time     `json:"finished_at"`
	Rounds     int           `json:"rounds"`
	Scores     []ScoreEntry  `json:"scores"`
	History    []RoundRecord `json:"history"`
}

type RoomStateData struct {
	RoomID         string           `json:"room_id"`
	Phase          GamePhase        `json:"phase"`
	Players        []PlayerSnapshot `json:"players"`
	CurrentDrawer  string           `json:"current_drawer,omitempty"`
	RoundNumber    int              `json:"round_number"`
	MaxRounds      int              `json:"max_rounds"`
	RoundDuration  int              `json:"round_duration"`
	TimeRemaining  int              `json:"time_remaining"`
	RoundActive    bool             `json:"round_active"`
	WordLength     int              `json:"word_length"`
	HiddenWord     string           `json:"hidden_word,omitempty"`
	Word           string           `json:"word,omitempty"`
	HasCustomWords bool             `json:"has_custom_words"`
	Canvas         []DrawEvent      `json:"canvas"`
}
