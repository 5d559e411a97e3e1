package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/bot"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

var ErrGameAlreadyExists = errors.New("game already exists")

// Registry addresses coordinators by game slug. A game that survived a
// process restart is rehydrated from its persisted record on first access.
type Registry struct {
	logger   *slog.Logger
	gameRepo gameRepo
	deciders bot.Factory

	mu    sync.Mutex
	games map[string]*Coordinator
}

func NewRegistry(logger *slog.Logger, gameRepo gameRepo, deciders bot.Factory) *Registry {
	return &Registry{
		logger:   logger,
		gameRepo: gameRepo,
		deciders: deciders,
		games:    make(map[string]*Coordinator),
	}
}

// Create - registers a coordinator for a freshly built game and starts it.
// On a start failure the registration is rolled back so the caller can undo
// its directory record too.
func (that *Registry) Create(ctx context.Context, game *entity.Game) (*Coordinator, error) {
	that.mu.Lock()

	if _, ok := that.games[game.ID]; ok {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrGameAlreadyExists, game.ID)
	}

	coord := New(that.logger, that.gameRepo, that.deciders, game)
	that.games[game.ID] = coord
	that.mu.Unlock()

	if err := coord.Start(ctx); err != nil {
		that.Remove(game.ID)
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	return coord, nil
}

// Get - returns the coordinator owning a slug, loading the persisted game
// record when the coordinator is not in memory. The load runs outside the
// registry lock so one slow fetch cannot stall unrelated games.
func (that *Registry) Get(ctx context.Context, slug string) (*Coordinator, error) {
	that.mu.Lock()
	if coord, ok := that.games[slug]; ok {
		that.mu.Unlock()
		return coord, nil
	}
	that.mu.Unlock()

	game, err := that.gameRepo.GetByID(ctx, slug)
	if err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			return nil, apperror.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	that.mu.Lock()
	if coord, ok := that.games[slug]; ok {
		// another caller rehydrated the slug while we were loading
		that.mu.Unlock()
		return coord, nil
	}

	coord := New(that.logger, that.gameRepo, that.deciders, game)
	that.games[slug] = coord
	that.mu.Unlock()

	// a game persisted between a human move and the bot's reply still owes
	// that reply after restart
	current := game.PlayerByMark(game.Turn)
	if game.IsOngoing() && current != nil && current.IsBot() {
		go coord.triggerBotMove(context.WithoutCancel(ctx))
	}

	return coord, nil
}

func (that *Registry) Remove(slug string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, slug)
}
