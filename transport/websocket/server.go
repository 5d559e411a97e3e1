package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixelforge/tictactoe-lobby/internal/coordinator"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

type gameLobby interface {
	CreateGame(ctx context.Context, creatorID, opponent, level string) (*entity.Game, error)
	Coordinator(ctx context.Context, slug string) (*coordinator.Coordinator, error)
	DeleteGame(ctx context.Context, slug string) error
}

type Server struct {
	logger *slog.Logger

	lobby           gameLobby
	defaultBotLevel string
	upgrader        websocket.Upgrader
}

func New(logger *slog.Logger, lobby gameLobby, defaultBotLevel string) *Server {
	return &Server{
		logger:          logger.With("component", "websocket"),
		lobby:           lobby,
		defaultBotLevel: defaultBotLevel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r, "")
	})
	mux.HandleFunc("/ws/{slug}", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r, r.PathValue("slug"))
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the connection and runs the client until it
// disconnects. A slug in the path binds the channel to that game up front.
func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request, slug string) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("WebSocket connection established", "slug", slug)

	client := newClient(that.logger, that.lobby, conn, that.defaultBotLevel)
	client.run(ctx, slug)
}
