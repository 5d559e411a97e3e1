package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
)

func TestEvaluate(t *testing.T) {
	t.Run("Returns EmptyCell for an empty board", func(t *testing.T) {
		// Given: a fresh board
		board := [9]string{}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the game is still open
		assert.Equal(t, EmptyCell, result)
	})

	t.Run("Returns PlayerX for a winning row", func(t *testing.T) {
		// Given: a board where X holds the top row
		board := [9]string{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: X is the winner
		assert.Equal(t, PlayerX, result)
	})

	t.Run("Returns PlayerO for a winning column", func(t *testing.T) {
		// Given: a board where O holds the left column
		board := [9]string{
			PlayerO, PlayerX, PlayerX,
			PlayerO, PlayerX, EmptyCell,
			PlayerO, EmptyCell, EmptyCell,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: O is the winner
		assert.Equal(t, PlayerO, result)
	})

	t.Run("Returns PlayerX for a winning diagonal", func(t *testing.T) {
		// Given: a board where X holds the main diagonal
		board := [9]string{
			PlayerX, PlayerO, EmptyCell,
			PlayerO, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerX,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: X is the winner
		assert.Equal(t, PlayerX, result)
	})

	t.Run("Returns PlayerTie for a full board with no line", func(t *testing.T) {
		// Given: a full board without a uniform line
		board := [9]string{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the game is a tie
		assert.Equal(t, PlayerTie, result)
	})

	t.Run("Returns EmptyCell for a partially filled open board", func(t *testing.T) {
		// Given: a board with moves but no winner
		board := [9]string{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: evaluating the board
		result := Evaluate(board)

		// Then: the game continues
		assert.Equal(t, EmptyCell, result)
	})
}

func TestGame_MakeTurn(t *testing.T) {
	t.Run("Turn alternates starting with X", func(t *testing.T) {
		// Given: a fresh ongoing game
		game := NewGame("g1")
		game.Status = StatusOngoing

		// When: applying a sequence of valid alternating moves
		moves := []struct {
			mark string
			cell int
		}{
			{PlayerX, 0}, {PlayerO, 3}, {PlayerX, 1}, {PlayerO, 4},
		}

		for n, move := range moves {
			// Then: before each move the stored turn matches fill-count parity
			if n%2 == 0 {
				assert.Equal(t, PlayerX, game.Turn)
			} else {
				assert.Equal(t, PlayerO, game.Turn)
			}

			require.NoError(t, game.MakeTurn(move.mark, move.cell))
		}

		assert.Equal(t, PlayerX, game.Turn)
	})

	t.Run("Rejects an out-of-range cell", func(t *testing.T) {
		// Given: a fresh ongoing game
		game := NewGame("g1")
		game.Status = StatusOngoing

		// When: playing outside the board
		err := game.MakeTurn(PlayerX, 9)

		// Then: the move fails and the board is untouched
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Equal(t, [9]string{}, game.Board)
	})

	t.Run("Rejects a negative cell", func(t *testing.T) {
		// Given: a fresh ongoing game
		game := NewGame("g1")
		game.Status = StatusOngoing

		// When: playing a negative index
		err := game.MakeTurn(PlayerX, -1)

		// Then: the move fails with ErrInvalidCell
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Same cell twice yields ErrCellOccupied, never a silent no-op", func(t *testing.T) {
		// Given: a game where X already took cell 4
		game := NewGame("g1")
		game.Status = StatusOngoing
		require.NoError(t, game.MakeTurn(PlayerX, 4))

		// When: O replays the same cell
		err := game.MakeTurn(PlayerO, 4)

		// Then: the move fails and the cell still belongs to X
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, PlayerX, game.Board[4])
		assert.Equal(t, PlayerO, game.Turn)
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		// Given: a fresh ongoing game, X to move
		game := NewGame("g1")
		game.Status = StatusOngoing

		// When: O tries to move first
		err := game.MakeTurn(PlayerO, 0)

		// Then: the move fails with ErrNotYourTurn
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, [9]string{}, game.Board)
	})

	t.Run("Sets the winner and clears the turn on a winning move", func(t *testing.T) {
		// Given: a game one X move away from a win
		game := NewGame("g1")
		game.Status = StatusOngoing
		game.Board = [9]string{
			PlayerX, PlayerX, EmptyCell,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: X completes the top row
		err := game.MakeTurn(PlayerX, 2)

		// Then: the game is finished with X as the winner
		require.NoError(t, err)
		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, PlayerX, game.Winner)
		assert.Equal(t, "", game.Turn)
	})

	t.Run("Rejects any move once the game is finished", func(t *testing.T) {
		// Given: a finished game
		game := NewGame("g1")
		game.Status = StatusFinished
		game.Winner = PlayerX
		board := game.Board

		// When: someone tries to keep playing
		err := game.MakeTurn(PlayerO, 5)

		// Then: the move fails with ErrGameFinished and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, board, game.Board)
		assert.Equal(t, PlayerX, game.Winner)
	})

	t.Run("Ends in a tie when the board fills without a line", func(t *testing.T) {
		// Given: an ongoing game with one open cell and no line possible
		game := NewGame("g1")
		game.Status = StatusOngoing
		game.Board = [9]string{
			PlayerX, PlayerO, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerO, PlayerX, EmptyCell,
		}

		// When: X fills the last cell
		err := game.MakeTurn(PlayerX, 8)

		// Then: the game is finished as a tie
		require.NoError(t, err)
		assert.Equal(t, StatusFinished, game.Status)
		assert.Equal(t, PlayerTie, game.Winner)
	})
}

func TestGame_PlayerLookups(t *testing.T) {
	t.Run("PlayerByID finds players on both slots", func(t *testing.T) {
		// Given: a game with a human X and a bot O
		game := NewGame("g1")
		game.PlayerX = NewHumanPlayer("alice", PlayerX)
		game.PlayerO = NewBotPlayer(PlayerO, BotLevelEasy)

		// When/Then: both ids resolve and an unknown id does not
		assert.Equal(t, game.PlayerX, game.PlayerByID("alice"))
		assert.Equal(t, game.PlayerO, game.PlayerByID("bot-O"))
		assert.Nil(t, game.PlayerByID("mallory"))
		assert.Nil(t, game.PlayerByID(""))
	})

	t.Run("PendingPlayer returns the unbound slot", func(t *testing.T) {
		// Given: a game waiting for an opponent
		game := NewGame("g1")
		game.PlayerX = NewHumanPlayer("alice", PlayerX)
		game.PlayerO = NewHumanPlayer("", PlayerO)

		// When: looking for a pending slot
		pending := game.PendingPlayer()

		// Then: the O slot is pending
		require.NotNil(t, pending)
		assert.Equal(t, PlayerO, pending.Mark)
		assert.True(t, pending.Pending)
	})

	t.Run("Clone does not alias the players", func(t *testing.T) {
		// Given: a game with two bound players
		game := NewGame("g1")
		game.PlayerX = NewHumanPlayer("alice", PlayerX)
		game.PlayerO = NewHumanPlayer("bob", PlayerO)

		// When: cloning and mutating the clone
		clone := game.Clone()
		clone.PlayerX.ID = "intruder"
		clone.Board[0] = PlayerX

		// Then: the original is unaffected
		assert.Equal(t, "alice", game.PlayerX.ID)
		assert.Equal(t, EmptyCell, game.Board[0])
	})
}
