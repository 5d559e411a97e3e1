package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
	"github.com/pixelforge/tictactoe-lobby/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a waiting game with two players
	game := entity.NewGame("brave-red-tiger")
	game.PlayerX = entity.NewHumanPlayer("alice", entity.PlayerX)
	game.PlayerO = entity.NewHumanPlayer("", entity.PlayerO)

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and the game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game with a move on the board
		game := entity.NewGame("brave-red-tiger")
		game.Status = entity.StatusOngoing
		game.Board[4] = entity.PlayerX
		game.Turn = entity.PlayerO
		game.PlayerX = entity.NewHumanPlayer("alice", entity.PlayerX)
		game.PlayerO = entity.NewBotPlayer(entity.PlayerO, entity.BotLevelHard)

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with the existing slug
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game matches the saved game
		require.NoError(t, err)
		require.Equal(t, game.ID, retrievedGame.ID)
		require.Equal(t, game.Board, retrievedGame.Board)
		require.Equal(t, game.Turn, retrievedGame.Turn)
		assert.True(t, retrievedGame.PlayerO.IsBot())
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with a non-existent slug
		retrievedGame, err := gameRepo.GetByID(ctx, "calm-blue-heron")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored game
		game := entity.NewGame("brave-red-tiger")

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: DeleteByID is called with the existing slug
		err = gameRepo.DeleteByID(ctx, game.ID)

		// Then: the record is gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_Idempotent", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: DeleteByID is called on a slug that was never stored
		err := gameRepo.DeleteByID(ctx, "calm-blue-heron")

		// Then: no error should be returned
		require.NoError(t, err)
	})
}
