package internal

import "encoding/json"

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound message types
const (
	InStartGame       = "start_game"
	InDrawEvent       = "draw_event"
	InClearCanvas     = "clear_canvas"
	InSubmitGuess     = "submit_guess"
	InUpdateWordPool  = "update_word_pool"
	InRequestWordPool = "request_word_pool"
	InPlayAgain       = "play_again"
	InLeave           = "leave"
)

// Outbound message types
const (
	EventJoined        = "joined"
	EventRoomState     = "room_state"
	EventRoundStarted  = "round_started"
	EventYourWord      = "your_word"
	EventTimerTick     = "timer_tick"
	EventLetterHint    = "letter_hint"
	EventDrawEvent     = "draw_event"
	EventCanvasCleared = "canvas_cleared"
	EventCorrectGuess  = "correct_guess"
	EventChatMessage   = "chat_message"
	EventRoundEnded    = "round_ended"
	EventGameEnded     = "game_ended"
	EventPlayerLeft    = "player_left"
	EventWordPool      = "word_pool"
	EventError         = "error"
)

// InboundMessage is the envelope clients send; Data is decoded per type.
type InboundMessage = Message[json.RawMessage]

type JoinedData struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

type RoundStartedData struct {
	Drawer      string `json:"drawer"`
	DrawerName  string `json:"drawer_name"`
	HiddenWord  string `json:"hidden_word"`
	RoundNumber int    `json:"round_number"`
	MaxRounds   int    `json:"max_rounds"`
	TimeLimit   int    `json:"time_limit"`
}

type YourWordData struct {
	Word string `json:"word"`
}

type TimerTickData struct {
	SecondsRemaining int `json:"seconds_remaining"`
}

type LetterHintData struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
}

type CorrectGuessData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Points     int    `json:"points"`
	Score      int    `json:"score"`
}

type ChatMessageData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
}

type RoundEndedData struct {
	Word        string         `json:"word,omitempty"`
	RoundNumber int            `json:"round_number"`
	Scores      []ScoreEntry   `json:"scores"`
	Reason      RoundEndReason `json:"reason"`
}

type GameEndedData struct {
	FinalScores  []ScoreEntry  `json:"final_scores"`
	RoundHistory []RoundRecord `json:"round_history"`
}

type PlayerLeftData struct {
	PlayerID       string `json:"player_id"`
	Username       string `json:"username"`
	RemainingCount int    `json:"remaining_count"`
}

type WordPoolData struct {
	Words  []string `json:"words"`
	Custom bool     `json:"custom"`
}

type ErrorData struct {
	Code string `json:"code"`
}

// Inbound payloads

type GuessRequest struct {
	Text string `json:"text"`
}

type WordPoolRequest struct {
	Words []string `json:"words"`
}
