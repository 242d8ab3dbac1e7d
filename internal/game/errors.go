package game

// GameError is a custom error type for game-related errors. Its value is the
// code reported to clients in error events.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Code is the wire code for the error.
func (e GameError) Code() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound            GameError = "room_not_found"
	ErrInsufficientPlayers     GameError = "insufficient_players"
	ErrRoundAlreadyActive      GameError = "round_already_active"
	ErrNotAuthorizedDrawer     GameError = "not_authorized_drawer"
	ErrAlreadyGuessedCorrectly GameError = "already_guessed_correctly"
	ErrEmptyWordPool           GameError = "empty_word_pool"
	ErrPlayerNotFound          GameError = "player_not_found"
	ErrPlayerAlreadyInRoom     GameError = "player_already_in_room"
	ErrRoomFull                GameError = "room_full"
	ErrInvalidPhase            GameError = "invalid_phase"
	ErrRoomClosed              GameError = "room_closed"
	ErrInternal                GameError = "internal_error"

	ErrNilConfig       GameError = "config cannot be nil"
	ErrNilTransport    GameError = "transport cannot be nil"
	ErrNilWordSelector GameError = "word selector cannot be nil"
	ErrNilClock        GameError = "clock cannot be nil"
)
