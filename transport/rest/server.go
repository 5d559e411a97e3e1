package rest

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
}

// New - builds the REST server and mounts the lobby API.
func New(logger *slog.Logger, lobby gameLobby, defaultBotLevel string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	h := newHandlers(logger, lobby, defaultBotLevel)

	e.GET("/ping", h.Ping)

	api := e.Group("/api")
	api.GET("/lobby", h.LobbyState)
	api.POST("/games", h.CreateGame)
	api.GET("/games", h.ListGames)
	api.GET("/games/:slug", h.GetGame)
	api.POST("/games/:slug/moves", h.MakeMove)
	api.POST("/games/:slug/join", h.JoinGame)
	api.POST("/games/:slug/bot", h.SwitchToAI)
	api.DELETE("/games/:slug", h.DeleteGame)

	return &Server{
		logger: logger.With("component", "rest"),
		echo:   e,
	}
}

func (that *Server) Start(port string) error {
	if err := that.echo.Start(":" + port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
