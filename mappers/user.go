// Package mappers translates entity state into SQL statements, one
// mapper per entity kind. The batched flush paths run inside the
// transaction owned by the unit of work; single-row helpers can run
// against any connection.
package mappers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/errors"
	"github.com/igoryuha/uow/persistence"
)

const (
	insertUserQuery       = `INSERT INTO users (id, name) VALUES (?, ?)`
	updateUserQuery       = `UPDATE users SET name = ? WHERE id = ?`
	deleteUserQuery       = `DELETE FROM users WHERE id = ?`
	selectUserByIDQuery   = `SELECT id, name FROM users WHERE id = ?`
	selectUserByNameQuery = `SELECT id, name FROM users WHERE name = ?`
)

type UserMapper struct {
	conn persistence.Conn
	log  *slog.Logger
}

func NewUserMapper(conn persistence.Conn, log *slog.Logger) *UserMapper {
	return &UserMapper{conn: conn, log: log}
}

// InsertAll writes one row per user, a single prepared statement
// executed per entity.
func (m *UserMapper) InsertAll(ctx context.Context, entities []persistence.Entity) error {
	users, err := asUsers(entities)
	if err != nil {
		return err
	}

	stmt, err := m.conn.PrepareContext(ctx, insertUserQuery)
	if err != nil {
		return fmt.Errorf("prepare insert users: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.ID(), u.Name()); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID(), err)
		}
	}
	m.log.Debug("Users inserted", "count", len(users))
	return nil
}

// UpdateAll rewrites the name of every given user.
func (m *UserMapper) UpdateAll(ctx context.Context, entities []persistence.Entity) error {
	users, err := asUsers(entities)
	if err != nil {
		return err
	}

	stmt, err := m.conn.PrepareContext(ctx, updateUserQuery)
	if err != nil {
		return fmt.Errorf("prepare update users: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.Name(), u.ID()); err != nil {
			return fmt.Errorf("update user %d: %w", u.ID(), err)
		}
	}
	m.log.Debug("Users updated", "count", len(users))
	return nil
}

func (m *UserMapper) Add(ctx context.Context, user *domain.User) error {
	if _, err := m.conn.ExecContext(ctx, insertUserQuery, user.ID(), user.Name()); err != nil {
		return fmt.Errorf("insert user %d: %w", user.ID(), err)
	}
	return nil
}

func (m *UserMapper) Delete(ctx context.Context, user *domain.User) error {
	if _, err := m.conn.ExecContext(ctx, deleteUserQuery, user.ID()); err != nil {
		return fmt.Errorf("delete user %d: %w", user.ID(), err)
	}
	return nil
}

// WithID loads a bare user row, without the owned messages.
func (m *UserMapper) WithID(ctx context.Context, id int64) (*domain.User, error) {
	return m.scanUser(m.conn.QueryRowContext(ctx, selectUserByIDQuery, id))
}

// WithName loads the first user carrying the given name.
func (m *UserMapper) WithName(ctx context.Context, name string) (*domain.User, error) {
	return m.scanUser(m.conn.QueryRowContext(ctx, selectUserByNameQuery, name))
}

func (m *UserMapper) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		id   int64
		name string
	)
	if err := row.Scan(&id, &name); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user", errors.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return domain.NewUser(id, name), nil
}

func asUsers(entities []persistence.Entity) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(entities))
	for _, e := range entities {
		u, ok := e.(*domain.User)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errors.ErrNotSupported, e)
		}
		users = append(users, u)
	}
	return users, nil
}
