package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
	"github.com/pixelforge/tictactoe-lobby/internal/bot"
	"github.com/pixelforge/tictactoe-lobby/internal/entity"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// Coordinator is the single writer of one game's state. Every state-mutating
// operation runs under mu, so moves, slot bindings and destroys form a
// strictly ordered sequence per game.
type Coordinator struct {
	logger   *slog.Logger
	gameRepo gameRepo
	deciders bot.Factory

	mu        sync.Mutex
	game      *entity.Game
	destroyed bool

	subsMu sync.RWMutex
	subs   map[*Subscription]struct{}
}

func New(logger *slog.Logger, gameRepo gameRepo, deciders bot.Factory, game *entity.Game) *Coordinator {
	return &Coordinator{
		logger:   logger.With("component", "coordinator", "gameID", game.ID),
		gameRepo: gameRepo,
		deciders: deciders,
		game:     game,
		subs:     make(map[*Subscription]struct{}),
	}
}

// Start - persists the initial state and, when the first turn already belongs
// to a bot, kicks off the bot-move path so the game can open one move deep.
func (that *Coordinator) Start(ctx context.Context) error {
	that.mu.Lock()

	if err := that.gameRepo.CreateOrUpdate(ctx, that.game); err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to persist new game: %w", err)
	}

	current := that.game.PlayerByMark(that.game.Turn)
	botFirst := that.game.IsOngoing() && current != nil && current.IsBot()
	that.mu.Unlock()

	if botFirst {
		go that.triggerBotMove(context.WithoutCancel(ctx))
	}

	return nil
}

// Snapshot - returns a copy of the current state.
func (that *Coordinator) Snapshot() (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.destroyed {
		return nil, apperror.ErrGameDestroyed
	}

	return that.game.Clone(), nil
}

// ApplyMove - validates and applies one move for the acting player, persists
// the new state and broadcasts it. When the next turn belongs to a bot the
// bot-move path is spawned without blocking the caller.
func (that *Coordinator) ApplyMove(ctx context.Context, actorID string, cell int) (*entity.Game, error) {
	that.mu.Lock()

	if that.destroyed {
		that.mu.Unlock()
		return nil, apperror.ErrGameDestroyed
	}

	if that.game.IsWaiting() {
		that.mu.Unlock()
		return nil, apperror.ErrGameNotStarted
	}

	var actorMark string
	if actor := that.game.PlayerByID(actorID); actor != nil {
		actorMark = actor.Mark
	}

	backup := that.game.Clone()

	if err := that.game.MakeTurn(actorMark, cell); err != nil {
		that.mu.Unlock()
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, that.game); err != nil {
		that.game = backup
		that.mu.Unlock()
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	snapshot := that.game.Clone()
	next := that.game.PlayerByMark(that.game.Turn)
	botNext := !that.game.IsFinished() && next != nil && next.IsBot()
	that.mu.Unlock()

	that.broadcast(Event{Type: EventGameUpdated, GameID: snapshot.ID, Game: snapshot})

	if botNext {
		go that.triggerBotMove(context.WithoutCancel(ctx))
	}

	return snapshot, nil
}

// triggerBotMove - consults the move decider outside the lock and re-enters
// ApplyMove with the bot's own identity. A second human move cannot race in
// between: the turn still points at the bot until ApplyMove flips it.
func (that *Coordinator) triggerBotMove(ctx context.Context) {
	log := that.logger.With("method", "triggerBotMove")

	that.mu.Lock()
	if that.destroyed || that.game.IsFinished() {
		that.mu.Unlock()
		return
	}

	botPlayer := that.game.PlayerByMark(that.game.Turn)
	if botPlayer == nil || !botPlayer.IsBot() {
		that.mu.Unlock()
		return
	}

	board := that.game.Board
	gameID := that.game.ID
	that.mu.Unlock()

	that.broadcast(Event{Type: EventAIThinking, GameID: gameID, PlayerID: botPlayer.ID})

	cell, err := that.deciders(botPlayer.Level).DecideMove(board, botPlayer.Mark)
	if err != nil || cell < 0 || cell >= len(board) || board[cell] != entity.EmptyCell {
		if err != nil {
			log.Warn("decider failed, falling back to first empty cell", "error", err)
		}

		cell, err = bot.FirstEmptyCell(board)
		if err != nil {
			// a full board must already carry a winner or a tie
			log.Error("no empty cells on an unfinished board", "error", err)
			return
		}
	}

	if _, err = that.ApplyMove(ctx, botPlayer.ID, cell); err != nil {
		log.Error("bot failed to make turn", "cell", cell, "error", err)
	}
}

// Join - binds a human participant to the pending slot. A player already in
// the game reconnects without mutating state.
func (that *Coordinator) Join(ctx context.Context, playerID string) (*entity.Game, string, error) {
	that.mu.Lock()

	if that.destroyed {
		that.mu.Unlock()
		return nil, "", apperror.ErrGameDestroyed
	}

	if existing := that.game.PlayerByID(playerID); existing != nil {
		snapshot := that.game.Clone()
		mark := existing.Mark
		that.mu.Unlock()
		return snapshot, mark, nil
	}

	pending := that.game.PendingPlayer()
	if !that.game.IsWaiting() || pending == nil {
		that.mu.Unlock()
		return nil, "", apperror.ErrLobbyFull
	}

	backup := that.game.Clone()

	pending.ID = playerID
	pending.Pending = false
	that.game.Status = entity.StatusOngoing
	that.game.UpdatedAt = time.Now().UTC()

	if err := that.gameRepo.CreateOrUpdate(ctx, that.game); err != nil {
		that.game = backup
		that.mu.Unlock()
		return nil, "", fmt.Errorf("failed to update game: %w", err)
	}

	snapshot := that.game.Clone()
	mark := pending.Mark
	that.mu.Unlock()

	that.broadcast(Event{Type: EventGameUpdated, GameID: snapshot.ID, Game: snapshot})

	return snapshot, mark, nil
}

// SwitchToBot - replaces the pending human slot with a bot opponent. This is
// a variant replacement of the slot, not an in-place edit.
func (that *Coordinator) SwitchToBot(ctx context.Context, level string) (*entity.Game, error) {
	that.mu.Lock()

	if that.destroyed {
		that.mu.Unlock()
		return nil, apperror.ErrGameDestroyed
	}

	pending := that.game.PendingPlayer()
	if pending == nil {
		that.mu.Unlock()
		return nil, apperror.ErrNoPendingSlot
	}

	backup := that.game.Clone()

	botPlayer := entity.NewBotPlayer(pending.Mark, level)
	switch pending.Mark {
	case entity.PlayerX:
		that.game.PlayerX = botPlayer
	case entity.PlayerO:
		that.game.PlayerO = botPlayer
	}

	that.game.Status = entity.StatusOngoing
	that.game.UpdatedAt = time.Now().UTC()

	if err := that.gameRepo.CreateOrUpdate(ctx, that.game); err != nil {
		that.game = backup
		that.mu.Unlock()
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	snapshot := that.game.Clone()
	botTurn := that.game.Turn == botPlayer.Mark
	that.mu.Unlock()

	that.broadcast(Event{Type: EventGameUpdated, GameID: snapshot.ID, Game: snapshot})

	if botTurn {
		go that.triggerBotMove(context.WithoutCancel(ctx))
	}

	return snapshot, nil
}

// Destroy - marks the game terminal and releases its persisted record. Safe
// to call more than once; every later operation fails with ErrGameDestroyed.
func (that *Coordinator) Destroy(ctx context.Context) error {
	that.mu.Lock()

	if that.destroyed {
		that.mu.Unlock()
		return nil
	}

	that.destroyed = true
	gameID := that.game.ID
	that.mu.Unlock()

	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		that.logger.Error("failed to delete game record", "error", err)
	}

	that.broadcast(Event{Type: EventGameEnded, GameID: gameID})

	return nil
}

func (that *Coordinator) Subscribe() *Subscription {
	sub := newSubscription()

	that.subsMu.Lock()
	that.subs[sub] = struct{}{}
	that.subsMu.Unlock()

	return sub
}

func (that *Coordinator) Unsubscribe(sub *Subscription) {
	that.subsMu.Lock()
	defer that.subsMu.Unlock()

	if _, ok := that.subs[sub]; !ok {
		return
	}

	delete(that.subs, sub)
	close(sub.C)
}

// Publish - lets the transport layer announce connection lifecycle events and
// structured errors to every channel subscribed to this game.
func (that *Coordinator) Publish(event Event) {
	that.broadcast(event)
}

func (that *Coordinator) broadcast(event Event) {
	that.subsMu.RLock()
	defer that.subsMu.RUnlock()

	for sub := range that.subs {
		select {
		case sub.C <- event:
		default:
			that.logger.Warn("dropping event for slow subscriber", "event", event.Type)
		}
	}
}
