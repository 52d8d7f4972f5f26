package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/persistence"
)

func loadedUser(t *testing.T) (*persistence.UserProxy, *persistence.UnitOfWork, *recordingMapper) {
	t.Helper()
	uow, _, mapper := newTestUnit(t)
	user := domain.NewUser(1, "bob")
	user.Own(domain.NewMessage(1, "body 1"), domain.NewMessage(2, "body 2"))
	return persistence.NewUserProxy(user, uow), uow, mapper
}

func Test_Message_Proxy_Edit_Registers_Dirty(t *testing.T) {
	req := require.New(t)
	proxy, uow, mapper := loadedUser(t)

	req.NoError(proxy.Messages()[0].Edit("new message body 1"))
	req.NoError(uow.Commit(context.Background()))

	req.Equal([]string{"update:1"}, mapper.calls)
	req.Equal("new message body 1", mapper.batches[0][0].(*domain.Message).Body())
}

func Test_User_Proxy_Rename_Registers_Dirty(t *testing.T) {
	req := require.New(t)
	proxy, uow, mapper := loadedUser(t)

	req.NoError(proxy.Rename("new username"))
	req.NoError(uow.Commit(context.Background()))

	req.Equal([]string{"update:1"}, mapper.calls)
	req.Equal("new username", mapper.batches[0][0].(*domain.User).Name())
	req.Equal("new username", proxy.Name())
}

// Editing through the owning user must be tracked exactly like a
// direct edit on the message proxy.
func Test_User_Proxy_EditMessage_Is_Tracked(t *testing.T) {
	req := require.New(t)
	proxy, uow, mapper := loadedUser(t)

	req.NoError(proxy.EditMessage(2, "new message body 2"))
	req.NoError(uow.Commit(context.Background()))

	req.Equal([]string{"update:1"}, mapper.calls)
	edited := mapper.batches[0][0].(*domain.Message)
	req.Equal(int64(2), edited.ID())
	req.Equal("new message body 2", edited.Body())
}

func Test_User_Proxy_EditMessage_Ignores_Unknown_Id(t *testing.T) {
	req := require.New(t)
	proxy, uow, mapper := loadedUser(t)

	req.NoError(proxy.EditMessage(42, "should not land"))
	req.NoError(uow.Commit(context.Background()))

	req.Empty(mapper.calls)
	req.Equal("body 1", proxy.Messages()[0].Body())
	req.Equal("body 2", proxy.Messages()[1].Body())
}

func Test_Proxies_Expose_Latest_State(t *testing.T) {
	req := require.New(t)
	proxy, _, _ := loadedUser(t)

	req.Equal(int64(1), proxy.ID())
	req.Len(proxy.Messages(), 2)
	req.Equal(int64(1), proxy.Messages()[0].OwnerID())

	req.NoError(proxy.EditMessage(1, "new message body 1"))
	req.Equal("new message body 1", proxy.Messages()[0].Body())
}
