package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/coordinator"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

func (that *Client) handleCreateGame(ctx context.Context, data json.RawMessage) error {
	log := that.logger.With("method", "handleCreateGame")

	if that.coord != nil {
		that.enqueue(encodeError(that.gameID, "channel is already bound to a game"))
		return nil
	}

	var payload CreateGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		that.enqueue(encodeError("", "malformed create_game payload"))
		return fmt.Errorf("failed to unmarshal create_game payload: %w", err)
	}

	opponent := payload.OpponentKind
	if opponent == "" {
		opponent = entity.KindHuman
	}

	level := payload.AILevel
	if level == "" {
		level = that.defaultBotLevel
	}

	game, err := that.lobby.CreateGame(ctx, payload.PlayerID, opponent, level)
	if err != nil {
		that.enqueue(encodeError("", err.Error()))
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.playerID = game.PlayerX.ID

	if err = that.bind(ctx, game.ID); err != nil {
		that.enqueue(encodeError(game.ID, err.Error()))
		return fmt.Errorf("failed to bind to created game: %w", err)
	}

	that.coord.Publish(coordinator.Event{
		Type:   coordinator.EventGameCreated,
		GameID: game.ID,
		Game:   game,
	})

	log.Info("game created", "slug", game.ID, "opponent", opponent)

	return nil
}

func (that *Client) handleUpdateGame(ctx context.Context, data json.RawMessage) error {
	var payload UpdateGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		that.enqueue(encodeError(that.gameID, "malformed update_game payload"))
		return fmt.Errorf("failed to unmarshal update_game payload: %w", err)
	}

	if that.coord == nil {
		that.enqueue(encodeError(payload.GameID, apperror.ErrGameNotFound.Error()))
		return nil
	}

	if payload.GameID != "" && payload.GameID != that.gameID {
		that.enqueue(encodeError(that.gameID, apperror.ErrIDMismatch.Error()))
		return nil
	}

	if payload.SpaceTaken == nil {
		that.enqueue(encodeError(that.gameID, "spaceTaken is required"))
		return nil
	}

	playerID := payload.PlayerID
	if playerID == "" {
		playerID = that.playerID
	}

	if _, err := that.coord.ApplyMove(ctx, playerID, *payload.SpaceTaken); err != nil {
		// rejections are part of the game's event stream, every subscriber
		// sees them
		that.coord.Publish(coordinator.Event{
			Type:     coordinator.EventError,
			GameID:   that.gameID,
			PlayerID: playerID,
			Message:  err.Error(),
		})
	}

	return nil
}

func (that *Client) handleEndGame(ctx context.Context, data json.RawMessage) error {
	log := that.logger.With("method", "handleEndGame")

	var payload EndGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		that.enqueue(encodeError(that.gameID, "malformed end_game payload"))
		return fmt.Errorf("failed to unmarshal end_game payload: %w", err)
	}

	slug := payload.GameID
	if slug == "" {
		slug = that.gameID
	}

	if that.gameID != "" && slug != that.gameID {
		that.enqueue(encodeError(that.gameID, apperror.ErrIDMismatch.Error()))
		return nil
	}

	if err := that.lobby.DeleteGame(ctx, slug); err != nil {
		that.enqueue(encodeError(slug, err.Error()))
		return fmt.Errorf("failed to end game: %w", err)
	}

	log.Info("game ended", "slug", slug)

	return nil
}
