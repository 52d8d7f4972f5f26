package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func Test_Open_Migrate_Seed(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "uow.db"))
	req.NoError(err)
	defer db.Close()

	req.NoError(Migrate(ctx, db))
	req.NoError(Seed(ctx, db, log))

	var users, messages int64
	req.NoError(db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users))
	req.NoError(db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages))
	req.Equal(int64(3), users)
	req.Equal(int64(4), messages)

	var name string
	req.NoError(db.QueryRowContext(ctx, `SELECT name FROM users WHERE id = 1`).Scan(&name))
	req.Equal("bob", name)

	var owner int64
	req.NoError(db.QueryRowContext(ctx, `SELECT user_id FROM messages WHERE id = 3`).Scan(&owner))
	req.Equal(int64(1), owner)
}

func Test_Seed_Twice_Keeps_Fixture_Single(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "uow.db"))
	req.NoError(err)
	defer db.Close()

	req.NoError(Migrate(ctx, db))
	req.NoError(Seed(ctx, db, log))
	req.NoError(Seed(ctx, db, log))

	var users int64
	req.NoError(db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users))
	req.Equal(int64(3), users)
}

func Test_Migrate_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	db, err := Open(filepath.Join(t.TempDir(), "uow.db"))
	req.NoError(err)
	defer db.Close()

	req.NoError(Migrate(ctx, db))
	req.NoError(Migrate(ctx, db))
}

func Test_Open_Requires_Path(t *testing.T) {
	req := require.New(t)

	_, err := Open("   ")
	req.Error(err)
}
