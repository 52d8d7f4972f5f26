package services

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/errors"
	"github.com/igoryuha/uow/mappers"
	"github.com/igoryuha/uow/mocks"
	"github.com/igoryuha/uow/moderation"
	"github.com/igoryuha/uow/persistence"
	"github.com/igoryuha/uow/repositories"
	"github.com/igoryuha/uow/storage"
)

type harness struct {
	db  *sql.DB
	svc IInteractor
}

// newHarness seeds a store and wires a full edit session on one
// transaction: mappers, unit of work, repository and interactor.
func newHarness(t *testing.T, dictionary []string) harness {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	db, err := storage.Open(filepath.Join(t.TempDir(), "uow.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	req.NoError(storage.Migrate(ctx, db))
	req.NoError(storage.Seed(ctx, db, log))

	tx, err := db.BeginTx(ctx, nil)
	req.NoError(err)

	registry := persistence.NewRegistry(log)
	registry.Register(persistence.KindUser, mappers.NewUserMapper(tx, log))
	registry.Register(persistence.KindMessage, mappers.NewMessageMapper(tx, log))

	uow := persistence.NewUnitOfWork(tx, registry, log)
	t.Cleanup(func() { _ = uow.Rollback() })

	moderator, err := moderation.NewModerator(dictionary, '*', log)
	req.NoError(err)

	repo := repositories.NewUserRepository(tx, uow, log)
	return harness{db: db, svc: NewInteractor(repo, uow, moderator, log)}
}

func (h harness) messageBody(t *testing.T, id int64) string {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	msg, err := mappers.NewMessageMapper(h.db, log).WithID(context.Background(), id)
	req.NoError(err)
	return msg.Body()
}

func (h harness) userName(t *testing.T, id int64) string {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	user, err := mappers.NewUserMapper(h.db, log).WithID(context.Background(), id)
	req.NoError(err)
	return user.Name()
}

func TestInteractor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist edits and rename in one commit", func(t *testing.T) {
		req := require.New(t)
		h := newHarness(t, nil)

		err := h.svc.Execute(ctx, domain.EditUserCommand{
			UserID:  1,
			NewName: "new username",
			Edits: []domain.MessageEdit{
				{MessageID: 1, Body: "new message body 1"},
				{MessageID: 2, Body: "new message body 2"},
			},
		})
		req.NoError(err)

		req.Equal("new message body 1", h.messageBody(t, 1))
		req.Equal("new message body 2", h.messageBody(t, 2))
		req.Equal("new username", h.userName(t, 1))
	})

	t.Run("should censor forbidden words before applying the edit", func(t *testing.T) {
		req := require.New(t)
		h := newHarness(t, []string{"badger"})

		err := h.svc.Execute(ctx, domain.EditUserCommand{
			UserID: 1,
			Edits:  []domain.MessageEdit{{MessageID: 1, Body: "a badger appears"}},
		})
		req.NoError(err)

		req.Equal("a ****** appears", h.messageBody(t, 1))
	})

	t.Run("should keep the current name when none is given", func(t *testing.T) {
		req := require.New(t)
		h := newHarness(t, nil)

		err := h.svc.Execute(ctx, domain.EditUserCommand{
			UserID: 1,
			Edits:  []domain.MessageEdit{{MessageID: 1, Body: "only the body moves"}},
		})
		req.NoError(err)

		req.Equal("only the body moves", h.messageBody(t, 1))
		req.Equal("bob", h.userName(t, 1))
	})

	t.Run("should skip edits for messages the user does not own", func(t *testing.T) {
		req := require.New(t)
		h := newHarness(t, nil)

		// Message 4 belongs to sam, message 99 to nobody.
		err := h.svc.Execute(ctx, domain.EditUserCommand{
			UserID: 1,
			Edits: []domain.MessageEdit{
				{MessageID: 4, Body: "hijacked"},
				{MessageID: 99, Body: "hijacked"},
				{MessageID: 1, Body: "legitimate edit"},
			},
		})
		req.NoError(err)

		req.Equal("body 4", h.messageBody(t, 4))
		req.Equal("legitimate edit", h.messageBody(t, 1))
	})

	t.Run("should fail for an unknown user", func(t *testing.T) {
		req := require.New(t)
		h := newHarness(t, nil)

		err := h.svc.Execute(ctx, domain.EditUserCommand{UserID: 42})
		req.ErrorIs(err, errors.ErrNotFound)
	})

	t.Run("should reject an invalid command before loading anything", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := mocks.NewMockIUserRepository(ctrl)
		mockRepo.EXPECT().WithID(gomock.Any(), gomock.Any()).Times(0)

		log := logs.GetLoggerFromLevel(slog.LevelDebug)
		moderator, err := moderation.NewModerator(nil, '*', log)
		req.NoError(err)
		svc := NewInteractor(mockRepo, nil, moderator, log)

		err = svc.Execute(ctx, domain.EditUserCommand{UserID: 0})
		req.Error(err)
		req.Contains(err.Error(), "validate command")
	})
}
