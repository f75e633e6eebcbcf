package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dogloot/server/internal/config"
)

func openTestSQLite(t *testing.T) *SQLiteRetiredRepo {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "records.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunSQLiteMigrations(ctx, db))
	return NewSQLiteRetiredRepo(db)
}

func seedLeaderboard(t *testing.T, store RetiredStore) {
	t.Helper()
	rows := []RetiredRow{
		{ID: uuid.New(), Name: "slow", Score: 50, PlayTime: 90 * time.Second},
		{ID: uuid.New(), Name: "best", Score: 80, PlayTime: 60 * time.Second},
		{ID: uuid.New(), Name: "fast", Score: 50, PlayTime: 30 * time.Second},
		{ID: uuid.New(), Name: "bob", Score: 50, PlayTime: 90 * time.Second},
		{ID: uuid.New(), Name: "none", Score: 0, PlayTime: time.Second},
	}
	for _, r := range rows {
		require.NoError(t, store.Upsert(context.Background(), r))
	}
}

func names(rows []RetiredRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSQLiteRetiredRepo_TopOrder(t *testing.T) {
	repo := openTestSQLite(t)
	seedLeaderboard(t, repo)

	rows, err := repo.Top(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"best", "fast", "bob", "slow", "none"}, names(rows))
	assert.Equal(t, 60*time.Second, rows[0].PlayTime)
}

func TestSQLiteRetiredRepo_Paging(t *testing.T) {
	repo := openTestSQLite(t)
	seedLeaderboard(t, repo)
	ctx := context.Background()

	rows, err := repo.Top(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"fast", "bob"}, names(rows))

	rows, err = repo.Top(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.Top(ctx, 0, MaxRecords+1)
	assert.True(t, errors.Is(err, ErrTooManyRecords))
	_, err = repo.Top(ctx, -1, 5)
	assert.Error(t, err)
}

func TestSQLiteRetiredRepo_UpsertSameID(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, repo.Upsert(ctx, RetiredRow{ID: id, Name: "rex", Score: 1, PlayTime: time.Second}))
	require.NoError(t, repo.Upsert(ctx, RetiredRow{ID: id, Name: "rex", Score: 9, PlayTime: 2 * time.Second}))

	rows, err := repo.Top(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, int64(9), rows[0].Score)
}

func TestRunSQLiteMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "m.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunSQLiteMigrations(ctx, db))
	require.NoError(t, RunSQLiteMigrations(ctx, db))
}

// TestRetiredRepo_Postgres runs against a live database when GAME_DB_URL is set.
func TestRetiredRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		t.Skip("GAME_DB_URL not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, MaxIdleConns: 1}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(ctx, db.Pool))

	repo := NewRetiredRepo(db)
	row := RetiredRow{ID: uuid.New(), Name: "pg-" + uuid.NewString()[:8], Score: 1 << 40, PlayTime: time.Second}
	require.NoError(t, repo.Upsert(ctx, row))
	t.Cleanup(func() {
		db.Pool.Exec(context.Background(), `DELETE FROM retired_players WHERE id = $1`, row.ID.String())
	})

	rows, err := repo.Top(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.ID, rows[0].ID)
}
