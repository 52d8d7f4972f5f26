package mappers_test

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/errors"
	"github.com/igoryuha/uow/mappers"
	"github.com/igoryuha/uow/persistence"
	"github.com/igoryuha/uow/storage"
)

func newStore(t *testing.T) (*sql.DB, *slog.Logger) {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := storage.Open(filepath.Join(t.TempDir(), "uow.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	req.NoError(storage.Migrate(context.Background(), db))
	return db, log
}

func Test_UserMapper_Add_And_Finders(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()
	mapper := mappers.NewUserMapper(db, log)

	req.NoError(mapper.Add(ctx, domain.NewUser(1, "bob")))

	byID, err := mapper.WithID(ctx, 1)
	req.NoError(err)
	req.Equal("bob", byID.Name())

	byName, err := mapper.WithName(ctx, "bob")
	req.NoError(err)
	req.Equal(int64(1), byName.ID())
}

func Test_UserMapper_WithID_Fails_On_Missing_Row(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	mapper := mappers.NewUserMapper(db, log)

	_, err := mapper.WithID(context.Background(), 42)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_UserMapper_UpdateAll_Rewrites_Every_Row(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()
	mapper := mappers.NewUserMapper(db, log)

	req.NoError(mapper.Add(ctx, domain.NewUser(1, "bob")))
	req.NoError(mapper.Add(ctx, domain.NewUser(2, "sam")))

	batch := []persistence.Entity{
		domain.NewUser(1, "new username"),
		domain.NewUser(2, "other username"),
	}
	req.NoError(mapper.UpdateAll(ctx, batch))

	first, err := mapper.WithID(ctx, 1)
	req.NoError(err)
	req.Equal("new username", first.Name())

	second, err := mapper.WithID(ctx, 2)
	req.NoError(err)
	req.Equal("other username", second.Name())
}

func Test_UserMapper_Rejects_Foreign_Entities(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	mapper := mappers.NewUserMapper(db, log)

	err := mapper.UpdateAll(context.Background(), []persistence.Entity{domain.NewMessage(1, "body 1")})
	req.ErrorIs(err, errors.ErrNotSupported)
}

func Test_UserMapper_Delete_Removes_Row(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()
	mapper := mappers.NewUserMapper(db, log)

	user := domain.NewUser(1, "bob")
	req.NoError(mapper.Add(ctx, user))
	req.NoError(mapper.Delete(ctx, user))

	_, err := mapper.WithID(ctx, 1)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_MessageMapper_InsertAll_Persists_Owner(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()

	user := domain.NewUser(1, "bob")
	first := domain.NewMessage(1, "body 1")
	second := domain.NewMessage(2, "body 2")
	user.Own(first, second)

	req.NoError(mappers.NewUserMapper(db, log).Add(ctx, user))
	req.NoError(mappers.NewMessageMapper(db, log).InsertAll(ctx, []persistence.Entity{first, second}))

	var owner int64
	req.NoError(db.QueryRowContext(ctx, `SELECT user_id FROM messages WHERE id = 2`).Scan(&owner))
	req.Equal(int64(1), owner)
}

func Test_MessageMapper_UpdateAll_Rewrites_Bodies(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()
	mapper := mappers.NewMessageMapper(db, log)

	user := domain.NewUser(1, "bob")
	first := domain.NewMessage(1, "body 1")
	second := domain.NewMessage(2, "body 2")
	user.Own(first, second)
	req.NoError(mappers.NewUserMapper(db, log).Add(ctx, user))
	req.NoError(mapper.InsertAll(ctx, []persistence.Entity{first, second}))

	first.Edit("new message body 1")
	second.Edit("new message body 2")
	req.NoError(mapper.UpdateAll(ctx, []persistence.Entity{first, second}))

	got, err := mapper.WithID(ctx, 1)
	req.NoError(err)
	req.Equal("new message body 1", got.Body())

	got, err = mapper.WithID(ctx, 2)
	req.NoError(err)
	req.Equal("new message body 2", got.Body())
}

func Test_MessageMapper_Single_Update_And_Delete(t *testing.T) {
	req := require.New(t)
	db, log := newStore(t)
	ctx := context.Background()
	mapper := mappers.NewMessageMapper(db, log)

	user := domain.NewUser(1, "bob")
	message := domain.NewMessage(1, "body 1")
	user.Own(message)
	req.NoError(mappers.NewUserMapper(db, log).Add(ctx, user))
	req.NoError(mapper.Add(ctx, message))

	message.Edit("new message body 1")
	req.NoError(mapper.Update(ctx, message))

	got, err := mapper.WithID(ctx, 1)
	req.NoError(err)
	req.Equal("new message body 1", got.Body())

	req.NoError(mapper.Delete(ctx, message))
	_, err = mapper.WithID(ctx, 1)
	req.ErrorIs(err, errors.ErrNotFound)
}
