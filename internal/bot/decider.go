package bot

import (
	"math/rand"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

const winScore = 10

// Decider picks the next cell for a bot player. Implementations may fail or
// return a bad cell; the caller owns the fallback policy.
type Decider interface {
	DecideMove(board [9]string, mark string) (int, error)
}

// Factory resolves a difficulty level to a decider.
type Factory func(level string) Decider

// New - returns the decider for a level; unknown levels play easy.
func New(level string) Decider {
	if level == entity.BotLevelHard {
		return &minimaxDecider{}
	}
	return &randomDecider{}
}

// FirstEmptyCell - the shared fallback move: the lowest-indexed empty cell.
func FirstEmptyCell(board [9]string) (int, error) {
	for i, cell := range board {
		if cell == entity.EmptyCell {
			return i, nil
		}
	}

	return 0, apperror.ErrNoEmptyCells
}

type randomDecider struct{}

func (that *randomDecider) DecideMove(board [9]string, _ string) (int, error) {
	availableCells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, apperror.ErrNoEmptyCells
	}

	return availableCells[rand.Intn(len(availableCells))], nil //nolint: gosec // it's ok
}

type minimaxDecider struct{}

func (that *minimaxDecider) DecideMove(board [9]string, mark string) (int, error) {
	bestCell := -1
	bestScore := -2 * winScore

	for i, cell := range board {
		if cell != entity.EmptyCell {
			continue
		}

		board[i] = mark
		score := minimax(board, toggleMark(mark), mark, 1)
		board[i] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			bestCell = i
		}
	}

	if bestCell < 0 {
		return 0, apperror.ErrNoEmptyCells
	}

	return bestCell, nil
}

// minimax - scores the position for self; earlier wins score higher.
func minimax(board [9]string, turn, self string, depth int) int {
	switch winner := entity.Evaluate(board); winner {
	case self:
		return winScore - depth
	case entity.PlayerTie:
		return 0
	case entity.EmptyCell:
		// game still open, keep searching
	default:
		return depth - winScore
	}

	maximizing := turn == self

	best := 2 * winScore
	if maximizing {
		best = -2 * winScore
	}

	for i, cell := range board {
		if cell != entity.EmptyCell {
			continue
		}

		board[i] = turn
		score := minimax(board, toggleMark(turn), self, depth+1)
		board[i] = entity.EmptyCell

		if maximizing && score > best {
			best = score
		}
		if !maximizing && score < best {
			best = score
		}
	}

	return best
}

func toggleMark(mark string) string {
	if mark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
