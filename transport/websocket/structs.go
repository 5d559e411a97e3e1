package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/pixelforge/tictactoe-lobby/internal/coordinator"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

// Message represents a WebSocket message with a type and a payload.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreateGamePayload struct {
	PlayerID     string `json:"playerId"`
	OpponentKind string `json:"opponentKind"`
	AILevel      string `json:"aiLevel,omitempty"`
}

type UpdateGamePayload struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	SpaceTaken *int   `json:"spaceTaken"`
}

type EndGamePayload struct {
	GameID string `json:"gameId"`
}

type eventPayload struct {
	GameID   string       `json:"gameId,omitempty"`
	Game     *entity.Game `json:"game,omitempty"`
	PlayerID string       `json:"playerId,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// encodeEvent - flattens a game broadcast into the wire format.
func encodeEvent(event coordinator.Event) ([]byte, error) {
	data, err := json.Marshal(eventPayload{
		GameID:   event.GameID,
		Game:     event.Game,
		PlayerID: event.PlayerID,
		Message:  event.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	raw, err := json.Marshal(Message{Type: event.Type, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event message: %w", err)
	}

	return raw, nil
}

// encodeError - builds an error message addressed to a single channel.
func encodeError(gameID, message string) []byte {
	raw, err := encodeEvent(coordinator.Event{
		Type:    coordinator.EventError,
		GameID:  gameID,
		Message: message,
	})
	if err != nil {
		return []byte(`{"type":"error"}`)
	}

	return raw
}
