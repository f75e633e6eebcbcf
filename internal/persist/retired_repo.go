package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxRecords caps one leaderboard page.
const MaxRecords = 100

var ErrTooManyRecords = errors.New("too many records requested")

// RetiredRow is one leaderboard entry.
type RetiredRow struct {
	ID       uuid.UUID
	Name     string
	Score    int64
	PlayTime time.Duration
}

// RetiredStore is implemented by the PostgreSQL and SQLite repos.
type RetiredStore interface {
	Upsert(ctx context.Context, row RetiredRow) error
	Top(ctx context.Context, start, maxItems int) ([]RetiredRow, error)
}

// page validates a leaderboard page request. maxItems 0 means MaxRecords.
func page(start, maxItems int) (int, int, error) {
	if start < 0 || maxItems < 0 {
		return 0, 0, fmt.Errorf("negative page bounds %d/%d", start, maxItems)
	}
	if maxItems == 0 {
		maxItems = MaxRecords
	}
	if maxItems > MaxRecords {
		return 0, 0, fmt.Errorf("%d > %d: %w", maxItems, MaxRecords, ErrTooManyRecords)
	}
	return start, maxItems, nil
}

// RetiredRepo stores retired players in PostgreSQL.
type RetiredRepo struct {
	db *DB
}

func NewRetiredRepo(db *DB) *RetiredRepo {
	return &RetiredRepo{db: db}
}

// Upsert writes a retired player. Writing the same id twice overwrites.
func (r *RetiredRepo) Upsert(ctx context.Context, row RetiredRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO retired_players (id, name, score, play_time_ms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, score = EXCLUDED.score, play_time_ms = EXCLUDED.play_time_ms`,
		row.ID.String(), row.Name, row.Score, row.PlayTime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("upsert retired player: %w", err)
	}
	return nil
}

// Top returns a leaderboard page: best score first, then shorter play time,
// then name.
func (r *RetiredRepo) Top(ctx context.Context, start, maxItems int) ([]RetiredRow, error) {
	start, maxItems, err := page(start, maxItems)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id::text, name, score, play_time_ms FROM retired_players
		 ORDER BY score DESC, play_time_ms, name
		 LIMIT $1 OFFSET $2`,
		maxItems, start,
	)
	if err != nil {
		return nil, fmt.Errorf("query retired players: %w", err)
	}
	defer rows.Close()

	var out []RetiredRow
	for rows.Next() {
		var (
			row RetiredRow
			id  string
			ms  int64
		)
		if err := rows.Scan(&id, &row.Name, &row.Score, &ms); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse retired player id: %w", err)
		}
		row.PlayTime = time.Duration(ms) * time.Millisecond
		out = append(out, row)
	}
	return out, rows.Err()
}

// SQLiteRetiredRepo stores retired players in SQLite.
type SQLiteRetiredRepo struct {
	db *sql.DB
}

func NewSQLiteRetiredRepo(db *sql.DB) *SQLiteRetiredRepo {
	return &SQLiteRetiredRepo{db: db}
}

func (r *SQLiteRetiredRepo) Upsert(ctx context.Context, row RetiredRow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO retired_players (id, name, score, play_time_ms)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET name = excluded.name, score = excluded.score, play_time_ms = excluded.play_time_ms`,
		row.ID.String(), row.Name, row.Score, row.PlayTime.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("upsert retired player: %w", err)
	}
	return nil
}

func (r *SQLiteRetiredRepo) Top(ctx context.Context, start, maxItems int) ([]RetiredRow, error) {
	start, maxItems, err := page(start, maxItems)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, score, play_time_ms FROM retired_players
		 ORDER BY score DESC, play_time_ms, name
		 LIMIT ? OFFSET ?`,
		maxItems, start,
	)
	if err != nil {
		return nil, fmt.Errorf("query retired players: %w", err)
	}
	defer rows.Close()

	var out []RetiredRow
	for rows.Next() {
		var (
			row RetiredRow
			id  string
			ms  int64
		)
		if err := rows.Scan(&id, &row.Name, &row.Score, &ms); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse retired player id: %w", err)
		}
		row.PlayTime = time.Duration(ms) * time.Millisecond
		out = append(out, row)
	}
	return out, rows.Err()
}
