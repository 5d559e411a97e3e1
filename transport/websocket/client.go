package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixelforge/tictactoe-lobby/internal/coordinator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	sendBuffer = 64
)

// Client is one WebSocket channel. It binds to at most one game; every
// broadcast of that game is forwarded onto the channel. The binding fields
// are touched only from the read loop.
type Client struct {
	logger *slog.Logger

	lobby           gameLobby
	defaultBotLevel string

	conn *websocket.Conn
	send chan []byte

	handlers map[string]func(ctx context.Context, data json.RawMessage) error

	playerID  string
	gameID    string
	coord     *coordinator.Coordinator
	sub       *coordinator.Subscription
	forwarder sync.WaitGroup
}

func newClient(logger *slog.Logger, lobby gameLobby, conn *websocket.Conn, defaultBotLevel string) *Client {
	client := &Client{
		logger:          logger.With("component", "ws-client"),
		lobby:           lobby,
		defaultBotLevel: defaultBotLevel,
		conn:            conn,
		send:            make(chan []byte, sendBuffer),
		handlers:        make(map[string]func(context.Context, json.RawMessage) error),
	}

	client.handlers["create_game"] = client.handleCreateGame
	client.handlers["update_game"] = client.handleUpdateGame
	client.handlers["end_game"] = client.handleEndGame

	return client
}

// run - pumps the connection until it closes. A non-empty slug binds the
// channel to that game before any message is read.
func (that *Client) run(ctx context.Context, slug string) {
	go that.writePump()

	if slug != "" {
		if err := that.bind(ctx, slug); err != nil {
			that.logger.Error("failed to bind channel", "slug", slug, "error", err)
			that.enqueue(encodeError(slug, err.Error()))
		}
	}

	that.readPump(ctx)
}

func (that *Client) readPump(ctx context.Context) {
	log := that.logger.With("method", "readPump")

	defer that.teardown()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.enqueue(encodeError(that.gameID, "malformed message"))
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			log.Error("unknown message type", "type", message.Type)
			that.enqueue(encodeError(that.gameID, "unknown message type: "+message.Type))
			continue
		}

		if err = handler(ctx, message.Data); err != nil {
			log.Error("error processing message", "type", message.Type, "error", err)
		}
	}
}

func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// bind - subscribes the channel to a game's broadcasts and announces the
// player to everyone already subscribed.
func (that *Client) bind(ctx context.Context, slug string) error {
	coord, err := that.lobby.Coordinator(ctx, slug)
	if err != nil {
		return err
	}

	that.coord = coord
	that.gameID = slug
	that.sub = coord.Subscribe()

	that.forwarder.Add(1)
	go that.forwardEvents(that.sub)

	coord.Publish(coordinator.Event{
		Type:     coordinator.EventPlayerConnected,
		GameID:   slug,
		PlayerID: that.playerID,
	})

	return nil
}

// forwardEvents - relays every broadcast of the bound game onto the channel.
// Ends when the subscription is closed.
func (that *Client) forwardEvents(sub *coordinator.Subscription) {
	defer that.forwarder.Done()

	for event := range sub.C {
		raw, err := encodeEvent(event)
		if err != nil {
			that.logger.Error("failed to encode event", "type", event.Type, "error", err)
			continue
		}

		that.enqueue(raw)
	}
}

// enqueue - non-blocking send; a channel that stops draining loses messages
// rather than stalling the game.
func (that *Client) enqueue(raw []byte) {
	select {
	case that.send <- raw:
	default:
		that.logger.Warn("dropping message for slow channel", "gameID", that.gameID)
	}
}

// teardown - detaches the channel from its game. Disconnecting never mutates
// game state; remaining subscribers just learn the player left.
func (that *Client) teardown() {
	if that.coord != nil {
		that.coord.Unsubscribe(that.sub)
		that.forwarder.Wait()

		that.coord.Publish(coordinator.Event{
			Type:     coordinator.EventPlayerDisconnected,
			GameID:   that.gameID,
			PlayerID: that.playerID,
		})
	}

	close(that.send)
}
