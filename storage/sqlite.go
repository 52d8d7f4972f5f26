// Package storage opens the relational store, prepares its schema and
// seeds the demonstration fixture.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/mappers"
	"github.com/igoryuha/uow/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id      INTEGER PRIMARY KEY,
	body    TEXT NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users (id)
);
`

// Open opens the SQLite store and verifies the connection.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// Migrate creates missing tables. Existing data is left alone.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Seed inserts the demonstration fixture through a dedicated unit of
// work, so the insert path is exercised the same way as any business
// transaction. A store that already holds users is left untouched.
func Seed(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Debug("Store already seeded", "users", count)
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}

	registry := persistence.NewRegistry(log)
	registry.Register(persistence.KindUser, mappers.NewUserMapper(tx, log))
	registry.Register(persistence.KindMessage, mappers.NewMessageMapper(tx, log))

	uow := persistence.NewUnitOfWork(tx, registry, log)
	defer uow.Rollback()

	bob := domain.NewUser(1, "bob")
	sam := domain.NewUser(2, "sam")
	von := domain.NewUser(3, "von")
	bob.Own(
		domain.NewMessage(1, "body 1"),
		domain.NewMessage(2, "body 2"),
		domain.NewMessage(3, "body 3"),
	)
	sam.Own(domain.NewMessage(4, "body 4"))

	for _, u := range []*domain.User{bob, sam, von} {
		if err := uow.RegisterNew(persistence.KindUser, u); err != nil {
			return err
		}
		for _, m := range u.Messages() {
			if err := uow.RegisterNew(persistence.KindMessage, m); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("Store seeded", "users", 3, "messages", 4)
	return nil
}
