package career

import "errors"

var (
	ErrNotPlaying          = errors.New("game is not in playing phase")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrNotEnded            = errors.New("game has not ended")
	ErrGameOver            = errors.New("game is over")
	ErrNoActionsLeft       = errors.New("no actions remaining this quarter")
	ErrActionsRemaining    = errors.New("actions remaining this quarter")
	ErrInsufficientStamina = errors.New("insufficient stamina")
	ErrUnknownAction       = errors.New("unknown action")
	ErrQuarterInFlight     = errors.New("quarter advance in flight")
	ErrQuarterAbandoned    = errors.New("quarter advance abandoned")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
