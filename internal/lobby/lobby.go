package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/coordinator"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
	"github.com/pixelforge/tictactoe-lobby/internal/pkg"
)

const (
	maxSummaries    = 5
	maxSlugAttempts = 10
)

var ErrSlugExhausted = errors.New("could not generate a unique slug")

type directoryRepo interface {
	Insert(ctx context.Context, slug string, createdAt time.Time) error
	Delete(ctx context.Context, slug string) error
	ListSlugs(ctx context.Context) ([]string, error)
}

// Summary is one bounded-list entry. The lists are a display cache; the
// authoritative state of any game lives with its coordinator.
type Summary struct {
	Slug      string    `json:"slug"`
	Opponent  string    `json:"opponent"`
	CreatedAt time.Time `json:"created_at"`
}

// Lobby is the single globally-addressed coordinator for game discovery. The
// two bounded summary lists are its private state; coordinators never write
// them.
type Lobby struct {
	logger    *slog.Logger
	directory directoryRepo
	registry  *coordinator.Registry

	mu         sync.Mutex
	seeking    []Summary
	inProgress []Summary
}

func New(logger *slog.Logger, directory directoryRepo, registry *coordinator.Registry) *Lobby {
	return &Lobby{
		logger:    logger.With("component", "lobby"),
		directory: directory,
		registry:  registry,
	}
}

// CreateGame - allocates a slug (retrying on collision), durably records it,
// starts the game's coordinator and files a summary entry. The creator always
// plays X. A game whose coordinator fails to start is rolled back so it never
// shows up in the lists.
func (that *Lobby) CreateGame(ctx context.Context, creatorID, opponent, level string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	if creatorID == "" {
		creatorID = pkg.GenerateSessionID()
	}

	slug, createdAt, err := that.allocateSlug(ctx)
	if err != nil {
		return nil, err
	}

	game := entity.NewGame(slug)
	game.CreatedAt = createdAt
	game.UpdatedAt = createdAt
	game.PlayerX = entity.NewHumanPlayer(creatorID, entity.PlayerX)

	if opponent == entity.KindBot {
		game.PlayerO = entity.NewBotPlayer(entity.PlayerO, level)
		game.Status = entity.StatusOngoing
	} else {
		game.PlayerO = entity.NewHumanPlayer("", entity.PlayerO)
	}

	coord, err := that.registry.Create(ctx, game)
	if err != nil {
		if delErr := that.directory.Delete(ctx, slug); delErr != nil {
			log.Error("failed to roll back directory record", "slug", slug, "error", delErr)
		}

		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.watchGame(coord, slug)

	summary := Summary{Slug: slug, Opponent: opponent, CreatedAt: createdAt}

	that.mu.Lock()
	if game.IsWaiting() {
		that.seeking = pushFront(that.seeking, summary)
	} else {
		that.inProgress = pushFront(that.inProgress, summary)
	}
	that.mu.Unlock()

	log.Info("game created", "slug", slug, "opponent", opponent)

	snapshot, err := coord.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot new game: %w", err)
	}

	return snapshot, nil
}

func (that *Lobby) allocateSlug(ctx context.Context) (string, time.Time, error) {
	for range maxSlugAttempts {
		slug := pkg.GenerateSlug()
		createdAt := time.Now().UTC()

		err := that.directory.Insert(ctx, slug, createdAt)
		if errors.Is(err, apperror.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to record game: %w", err)
		}

		return slug, createdAt, nil
	}

	return "", time.Time{}, ErrSlugExhausted
}

// State - returns copies of the two bounded summary lists.
func (that *Lobby) State() (seeking, inProgress []Summary) {
	that.mu.Lock()
	defer that.mu.Unlock()

	seeking = append([]Summary(nil), that.seeking...)
	inProgress = append([]Summary(nil), that.inProgress...)

	return seeking, inProgress
}

// ListAllSlugs - reads the full durable directory, newest first. Unbounded,
// for diagnostic use; distinct from the bounded summary lists.
func (that *Lobby) ListAllSlugs(ctx context.Context) ([]string, error) {
	slugs, err := that.directory.ListSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}

	return slugs, nil
}

// GetGame - fetches the authoritative state straight from the game's
// coordinator.
func (that *Lobby) GetGame(ctx context.Context, slug string) (*entity.Game, error) {
	coord, err := that.registry.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	return coord.Snapshot()
}

// Coordinator - addresses a game's coordinator, for transports that need to
// subscribe to its broadcasts.
func (that *Lobby) Coordinator(ctx context.Context, slug string) (*coordinator.Coordinator, error) {
	return that.registry.Get(ctx, slug)
}

// MakeMove - applies a move on behalf of the player holding a mark. A move
// that finishes the game drops it from the in-progress list.
func (that *Lobby) MakeMove(ctx context.Context, slug, mark string, cell int) (*entity.Game, error) {
	coord, err := that.registry.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	snapshot, err := coord.Snapshot()
	if err != nil {
		return nil, err
	}

	var actorID string
	if player := snapshot.PlayerByMark(mark); player != nil {
		actorID = player.ID
	}

	game, err := coord.ApplyMove(ctx, actorID, cell)
	if err != nil {
		return nil, err
	}

	if game.IsFinished() {
		that.mu.Lock()
		that.inProgress = removeSlug(that.inProgress, slug)
		that.mu.Unlock()
	}

	return game, nil
}

// JoinGame - binds a participant to the pending slot and moves the game's
// summary from seeking to in-progress.
func (that *Lobby) JoinGame(ctx context.Context, slug, playerID string) (*entity.Game, string, error) {
	coord, err := that.registry.Get(ctx, slug)
	if err != nil {
		return nil, "", err
	}

	if playerID == "" {
		playerID = pkg.GenerateSessionID()
	}

	game, mark, err := coord.Join(ctx, playerID)
	if err != nil {
		return nil, "", err
	}

	that.promoteToInProgress(slug, entity.KindHuman, game.CreatedAt)

	return game, mark, nil
}

// SwitchToAI - resolves the pending slot to a bot opponent.
func (that *Lobby) SwitchToAI(ctx context.Context, slug, level string) (*entity.Game, error) {
	coord, err := that.registry.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	game, err := coord.SwitchToBot(ctx, level)
	if err != nil {
		return nil, err
	}

	that.promoteToInProgress(slug, entity.KindBot, game.CreatedAt)

	return game, nil
}

// DeleteGame - destroys the game, releases its directory record and filters
// it out of both summary lists. Calling it again for the same slug is safe.
func (that *Lobby) DeleteGame(ctx context.Context, slug string) error {
	log := that.logger.With("method", "DeleteGame", "slug", slug)

	if slug == "" {
		return apperror.ErrMissingSlug
	}

	coord, err := that.registry.Get(ctx, slug)
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		// already gone, still sweep the directory and the lists
	case err != nil:
		return err
	default:
		if err = coord.Destroy(ctx); err != nil {
			return fmt.Errorf("failed to destroy game: %w", err)
		}
		that.registry.Remove(slug)
	}

	if err = that.directory.Delete(ctx, slug); err != nil {
		return fmt.Errorf("failed to delete game record: %w", err)
	}

	that.mu.Lock()
	that.seeking = removeSlug(that.seeking, slug)
	that.inProgress = removeSlug(that.inProgress, slug)
	that.mu.Unlock()

	log.Info("game deleted")

	return nil
}

// watchGame - evicts the game from the in-progress list once it ends off the
// lobby's own move path, e.g. when the bot plays the finishing move.
func (that *Lobby) watchGame(coord *coordinator.Coordinator, slug string) {
	sub := coord.Subscribe()

	go func() {
		defer coord.Unsubscribe(sub)

		for event := range sub.C {
			finished := event.Game != nil && event.Game.IsFinished()
			if !finished && event.Type != coordinator.EventGameEnded {
				continue
			}

			that.mu.Lock()
			that.inProgress = removeSlug(that.inProgress, slug)
			that.mu.Unlock()

			return
		}
	}()
}

func (that *Lobby) promoteToInProgress(slug, opponent string, createdAt time.Time) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seeking = removeSlug(that.seeking, slug)

	for _, summary := range that.inProgress {
		if summary.Slug == slug {
			return
		}
	}

	that.inProgress = pushFront(that.inProgress, Summary{
		Slug:      slug,
		Opponent:  opponent,
		CreatedAt: createdAt,
	})
}

func pushFront(list []Summary, summary Summary) []Summary {
	list = append([]Summary{summary}, list...)
	if len(list) > maxSummaries {
		list = list[:maxSummaries]
	}

	return list
}

func removeSlug(list []Summary, slug string) []Summary {
	filtered := list[:0]
	for _, summary := range list {
		if summary.Slug != slug {
			filtered = append(filtered, summary)
		}
	}

	return filtered
}
