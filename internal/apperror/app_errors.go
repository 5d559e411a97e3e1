package apperror

import "errors"

var (
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game is not started")

	ErrGameNotFound  = errors.New("game not found")
	ErrGameDestroyed = errors.New("game is destroyed")

	ErrMissingSlug   = errors.New("slug is missing")
	ErrSlugTaken     = errors.New("slug is already taken")
	ErrLobbyFull     = errors.New("game is not waiting for players")
	ErrNoPendingSlot = errors.New("no pending player slot")

	ErrIDMismatch = errors.New("game id does not match connection game")

	ErrNoEmptyCells = errors.New("no empty cells left")
)
