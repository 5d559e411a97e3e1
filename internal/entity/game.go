package entity

import (
	"fmt"
	"time"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
)

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Game struct {
	ID        string    `json:"id"`
	Board     [9]string `json:"board"`
	Turn      string    `json:"player_turn,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	Status    string    `json:"status"`
	PlayerX   *Player   `json:"player_x,omitempty"`
	PlayerO   *Player   `json:"player_o,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGame - allocates a fresh game; the board is never shared between games.
func NewGame(id string) *Game {
	now := time.Now().UTC()

	return &Game{
		ID:        id,
		Board:     [9]string{},
		Turn:      PlayerX,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Evaluate - checks the 8 fixed triples in a deterministic order and returns
// the winning mark, PlayerTie on a full board, or EmptyCell while the game
// is still open.
func Evaluate(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return PlayerTie
}

func (that *Game) DetermineGameResult() string {
	return Evaluate(that.Board)
}

// MakeTurn - applies one move. Validation order: finished game, cell range,
// cell occupancy, turn ownership. On failure the game is left untouched.
func (that *Game) MakeTurn(playerMark string, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	that.Board[cell] = playerMark
	that.UpdatedAt = time.Now().UTC()

	switch winner := that.DetermineGameResult(); winner {
	case PlayerX, PlayerO, PlayerTie:
		that.Winner = winner
		that.Status = StatusFinished
		that.Turn = ""
	default:
		that.Turn = toggleMark(playerMark)
	}

	return nil
}

func toggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) PlayerByMark(mark string) *Player {
	switch mark {
	case PlayerX:
		return that.PlayerX
	case PlayerO:
		return that.PlayerO
	default:
		return nil
	}
}

func (that *Game) PlayerByID(id string) *Player {
	if id == "" {
		return nil
	}

	if that.PlayerX != nil && that.PlayerX.ID == id {
		return that.PlayerX
	}

	if that.PlayerO != nil && that.PlayerO.ID == id {
		return that.PlayerO
	}

	return nil
}

// PendingPlayer - returns the slot reserved but not yet bound, if any.
func (that *Game) PendingPlayer() *Player {
	if that.PlayerX != nil && that.PlayerX.Pending {
		return that.PlayerX
	}

	if that.PlayerO != nil && that.PlayerO.Pending {
		return that.PlayerO
	}

	return nil
}

// Clone - returns a deep copy suitable for handing out as a snapshot.
func (that *Game) Clone() *Game {
	clone := *that

	if that.PlayerX != nil {
		playerX := *that.PlayerX
		clone.PlayerX = &playerX
	}

	if that.PlayerO != nil {
		playerO := *that.PlayerO
		clone.PlayerO = &playerO
	}

	return &clone
}
