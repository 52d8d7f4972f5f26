//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/errors"
	"github.com/igoryuha/uow/persistence"
)

const selectUserAggregateQuery = `
SELECT u.id, u.name, m.id, m.body
FROM users AS u
JOIN messages AS m ON m.user_id = u.id
WHERE u.id = ?
ORDER BY m.id`

type IUserRepository interface {
	WithID(ctx context.Context, id int64) (*persistence.UserProxy, error)
}

// UserRepository loads user aggregates and hands them out wrapped in
// change-tracking proxies. Raw entities never leave this package.
type UserRepository struct {
	conn persistence.Conn
	uow  *persistence.UnitOfWork
	log  *slog.Logger
}

func NewUserRepository(conn persistence.Conn, uow *persistence.UnitOfWork, log *slog.Logger) IUserRepository {
	return &UserRepository{conn: conn, uow: uow, log: log}
}

// WithID loads the user and its messages in a single join, messages
// ordered by id. The join makes a user without messages look exactly
// like a missing user: both come back as ErrNotFound.
func (r *UserRepository) WithID(ctx context.Context, id int64) (*persistence.UserProxy, error) {
	rows, err := r.conn.QueryContext(ctx, selectUserAggregateQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	defer rows.Close()

	var user *domain.User
	for rows.Next() {
		var (
			userID    int64
			name      string
			messageID int64
			body      string
		)
		if err := rows.Scan(&userID, &name, &messageID, &body); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		if user == nil {
			user = domain.NewUser(userID, name)
		}
		user.Own(domain.NewMessage(messageID, body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", errors.ErrNotFound, id)
	}

	r.log.Debug("User aggregate loaded", "user", user.ID(), "messages", len(user.Messages()))
	return persistence.NewUserProxy(user, r.uow), nil
}
