package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
	"github.com/pixelforge/tictactoe-lobby/internal/lobby"
)

type gameLobby interface {
	CreateGame(ctx context.Context, creatorID, opponent, level string) (*entity.Game, error)
	State() (seeking, inProgress []lobby.Summary)
	ListAllSlugs(ctx context.Context) ([]string, error)
	GetGame(ctx context.Context, slug string) (*entity.Game, error)
	MakeMove(ctx context.Context, slug, mark string, cell int) (*entity.Game, error)
	JoinGame(ctx context.Context, slug, playerID string) (*entity.Game, string, error)
	SwitchToAI(ctx context.Context, slug, level string) (*entity.Game, error)
	DeleteGame(ctx context.Context, slug string) error
}

type handlers struct {
	logger *slog.Logger

	lobby           gameLobby
	defaultBotLevel string
}

func newHandlers(logger *slog.Logger, lobby gameLobby, defaultBotLevel string) *handlers {
	return &handlers{
		logger:          logger.With("component", "rest-handlers"),
		lobby:           lobby,
		defaultBotLevel: defaultBotLevel,
	}
}

type createGameRequest struct {
	PlayerID string `json:"playerId"`
	Opponent string `json:"opponent"`
	Level    string `json:"level"`
}

type createGameResponse struct {
	Slug             string       `json:"slug"`
	CreatorMark      string       `json:"creatorMark"`
	WaitingForPlayer bool         `json:"waitingForPlayer"`
	Game             *entity.Game `json:"game"`
}

type lobbyStateResponse struct {
	GamesSeekingPlayers []lobby.Summary `json:"gamesSeekingPlayers"`
	GamesInProgress     []lobby.Summary `json:"gamesInProgress"`
}

type makeMoveRequest struct {
	Mark string `json:"mark"`
	Cell int    `json:"cell"`
}

type joinGameRequest struct {
	PlayerID string `json:"playerId"`
}

type joinGameResponse struct {
	Game *entity.Game `json:"game"`
	Mark string       `json:"mark"`
}

type switchToAIRequest struct {
	Level string `json:"level"`
}

func (that *handlers) Ping(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pong")
}

func (that *handlers) CreateGame(ctx echo.Context) error {
	log := that.logger.With("method", "CreateGame")

	var req createGameRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	opponent := req.Opponent
	if opponent == "" {
		opponent = entity.KindHuman
	}

	level := req.Level
	if level == "" {
		level = that.defaultBotLevel
	}

	game, err := that.lobby.CreateGame(ctx.Request().Context(), req.PlayerID, opponent, level)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createGameResponse{
		Slug:             game.ID,
		CreatorMark:      entity.PlayerX,
		WaitingForPlayer: game.IsWaiting(),
		Game:             game,
	})
}

func (that *handlers) LobbyState(ctx echo.Context) error {
	seeking, inProgress := that.lobby.State()

	if seeking == nil {
		seeking = []lobby.Summary{}
	}
	if inProgress == nil {
		inProgress = []lobby.Summary{}
	}

	return ctx.JSON(http.StatusOK, lobbyStateResponse{
		GamesSeekingPlayers: seeking,
		GamesInProgress:     inProgress,
	})
}

func (that *handlers) ListGames(ctx echo.Context) error {
	slugs, err := that.lobby.ListAllSlugs(ctx.Request().Context())
	if err != nil {
		that.logger.Error("failed to list games", "error", err)
		return that.writeError(ctx, err)
	}

	if slugs == nil {
		slugs = []string{}
	}

	return ctx.JSON(http.StatusOK, map[string][]string{"slugs": slugs})
}

func (that *handlers) GetGame(ctx echo.Context) error {
	game, err := that.lobby.GetGame(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return that.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, game)
}

func (that *handlers) MakeMove(ctx echo.Context) error {
	log := that.logger.With("method", "MakeMove")

	var req makeMoveRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	game, err := that.lobby.MakeMove(ctx.Request().Context(), ctx.Param("slug"), req.Mark, req.Cell)
	if err != nil {
		log.Info("move rejected", "slug", ctx.Param("slug"), "error", err)
		return that.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, game)
}

func (that *handlers) JoinGame(ctx echo.Context) error {
	log := that.logger.With("method", "JoinGame")

	var req joinGameRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	game, mark, err := that.lobby.JoinGame(ctx.Request().Context(), ctx.Param("slug"), req.PlayerID)
	if err != nil {
		log.Info("join rejected", "slug", ctx.Param("slug"), "error", err)
		return that.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, joinGameResponse{Game: game, Mark: mark})
}

func (that *handlers) SwitchToAI(ctx echo.Context) error {
	log := that.logger.With("method", "SwitchToAI")

	var req switchToAIRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	level := req.Level
	if level == "" {
		level = that.defaultBotLevel
	}

	game, err := that.lobby.SwitchToAI(ctx.Request().Context(), ctx.Param("slug"), level)
	if err != nil {
		log.Info("switch rejected", "slug", ctx.Param("slug"), "error", err)
		return that.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, game)
}

func (that *handlers) DeleteGame(ctx echo.Context) error {
	log := that.logger.With("method", "DeleteGame")

	if err := that.lobby.DeleteGame(ctx.Request().Context(), ctx.Param("slug")); err != nil {
		log.Error("failed to delete game", "slug", ctx.Param("slug"), "error", err)
		return that.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (that *handlers) writeError(ctx echo.Context, err error) error {
	return ctx.JSON(httpStatus(err), errorBody(err.Error()))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// httpStatus - maps domain errors onto HTTP status codes. Anything unmapped is
// an internal error.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrMissingSlug),
		errors.Is(err, apperror.ErrIDMismatch):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameNotStarted),
		errors.Is(err, apperror.ErrLobbyFull),
		errors.Is(err, apperror.ErrNoPendingSlot):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrGameDestroyed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
