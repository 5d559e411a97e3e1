package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pixelforge/tictactoe-lobby/internal/apperror"
)

// LobbyRepository is the durable game directory: one row per live game,
// keyed by slug, append/delete only.
type LobbyRepository interface {
	Insert(ctx context.Context, slug string, createdAt time.Time) error
	Delete(ctx context.Context, slug string) error
	ListSlugs(ctx context.Context) ([]string, error)
}

type dbLobby struct {
	conn *sql.DB
}

func NewLobbyRepository(conn *sql.DB) LobbyRepository {
	return &dbLobby{
		conn: conn,
	}
}

// Insert - records a game; a duplicate slug surfaces as ErrSlugTaken so the
// caller can retry generation.
func (that *dbLobby) Insert(ctx context.Context, slug string, createdAt time.Time) error {
	query := `INSERT INTO games (slug, created_at) VALUES (?, ?)`

	_, err := that.conn.ExecContext(ctx, query, slug, createdAt)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return apperror.ErrSlugTaken
	}

	if err != nil {
		return fmt.Errorf("can't insert game record: %w", err)
	}

	return nil
}

// Delete - removes a game record; deleting an absent slug is a no-op.
func (that *dbLobby) Delete(ctx context.Context, slug string) error {
	query := `DELETE FROM games WHERE slug = ?`

	if _, err := that.conn.ExecContext(ctx, query, slug); err != nil {
		return fmt.Errorf("can't delete game record: %w", err)
	}

	return nil
}

// ListSlugs - returns every recorded slug, newest first.
func (that *dbLobby) ListSlugs(ctx context.Context) ([]string, error) {
	query := `SELECT slug FROM games ORDER BY created_at DESC, rowid DESC`

	rows, err := that.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("can't list game records: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err = rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("can't scan game record: %w", err)
		}
		slugs = append(slugs, slug)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read game records: %w", err)
	}

	return slugs, nil
}
