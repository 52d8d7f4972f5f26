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
	insertMessageQuery     = `INSERT INTO messages (id, body, user_id) VALUES (?, ?, ?)`
	updateMessageQuery     = `UPDATE messages SET body = ? WHERE id = ?`
	deleteMessageQuery     = `DELETE FROM messages WHERE id = ?`
	selectMessageByIDQuery = `SELECT id, body FROM messages WHERE id = ?`
)

type MessageMapper struct {
	conn persistence.Conn
	log  *slog.Logger
}

func NewMessageMapper(conn persistence.Conn, log *slog.Logger) *MessageMapper {
	return &MessageMapper{conn: conn, log: log}
}

// InsertAll writes one row per message. The owner must be assigned
// before the flush, the column is NOT NULL.
func (m *MessageMapper) InsertAll(ctx context.Context, entities []persistence.Entity) error {
	messages, err := asMessages(entities)
	if err != nil {
		return err
	}

	stmt, err := m.conn.PrepareContext(ctx, insertMessageQuery)
	if err != nil {
		return fmt.Errorf("prepare insert messages: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		if _, err := stmt.ExecContext(ctx, msg.ID(), msg.Body(), msg.OwnerID()); err != nil {
			return fmt.Errorf("insert message %d: %w", msg.ID(), err)
		}
	}
	m.log.Debug("Messages inserted", "count", len(messages))
	return nil
}

// UpdateAll rewrites the body of every given message.
func (m *MessageMapper) UpdateAll(ctx context.Context, entities []persistence.Entity) error {
	messages, err := asMessages(entities)
	if err != nil {
		return err
	}

	stmt, err := m.conn.PrepareContext(ctx, updateMessageQuery)
	if err != nil {
		return fmt.Errorf("prepare update messages: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		if _, err := stmt.ExecContext(ctx, msg.Body(), msg.ID()); err != nil {
			return fmt.Errorf("update message %d: %w", msg.ID(), err)
		}
	}
	m.log.Debug("Messages updated", "count", len(messages))
	return nil
}

// Update rewrites a single message body.
func (m *MessageMapper) Update(ctx context.Context, message *domain.Message) error {
	if _, err := m.conn.ExecContext(ctx, updateMessageQuery, message.Body(), message.ID()); err != nil {
		return fmt.Errorf("update message %d: %w", message.ID(), err)
	}
	return nil
}

func (m *MessageMapper) Add(ctx context.Context, message *domain.Message) error {
	if _, err := m.conn.ExecContext(ctx, insertMessageQuery, message.ID(), message.Body(), message.OwnerID()); err != nil {
		return fmt.Errorf("insert message %d: %w", message.ID(), err)
	}
	return nil
}

func (m *MessageMapper) Delete(ctx context.Context, message *domain.Message) error {
	if _, err := m.conn.ExecContext(ctx, deleteMessageQuery, message.ID()); err != nil {
		return fmt.Errorf("delete message %d: %w", message.ID(), err)
	}
	return nil
}

// WithID loads a bare message row.
func (m *MessageMapper) WithID(ctx context.Context, id int64) (*domain.Message, error) {
	var (
		messageID int64
		body      string
	)
	row := m.conn.QueryRowContext(ctx, selectMessageByIDQuery, id)
	if err := row.Scan(&messageID, &body); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: message %d", errors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return domain.NewMessage(messageID, body), nil
}

func asMessages(entities []persistence.Entity) ([]*domain.Message, error) {
	messages := make([]*domain.Message, 0, len(entities))
	for _, e := range entities {
		msg, ok := e.(*domain.Message)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errors.ErrNotSupported, e)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
