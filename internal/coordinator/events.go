package coordinator

import "github.com/pixelforge/tictactoe-lobby/internal/entity"

const (
	EventGameCreated        = "game_created"
	EventGameUpdated        = "game_updated"
	EventAIThinking         = "ai_thinking"
	EventGameEnded          = "game_ended"
	EventPlayerConnected    = "player_connected"
	EventPlayerDisconnected = "player_disconnected"
	EventError              = "error"
)

// Event is what a game broadcasts to its subscribed channels. Game carries a
// snapshot copy and is safe to hand to any number of readers.
type Event struct {
	Type     string       `json:"type"`
	GameID   string       `json:"gameId"`
	Game     *entity.Game `json:"game,omitempty"`
	PlayerID string       `json:"playerId,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// Subscription delivers a game's events. C is buffered; a subscriber that
// stops draining loses events rather than blocking the game.
type Subscription struct {
	C chan Event
}

const subscriptionBuffer = 16

func newSubscription() *Subscription {
	return &Subscription{C: make(chan Event, subscriptionBuffer)}
}
