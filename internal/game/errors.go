package game

// GameError is a sentinel error for invalid game rules or usage.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Errors returned by New and by calls on a stopped session.
const (
	ErrInvalidRange     GameError = "min must not be greater than max"
	ErrNilSource        GameError = "random source cannot be nil"
	ErrNegativeAttempts GameError = "max attempts must be >= 0"
	ErrEmptyExitToken   GameError = "exit token must not be empty"
	ErrNumericExitToken GameError = "exit token must not be a number"
	ErrSessionStopped   GameError = "session is stopped"
)
