package persistence

import (
	"github.com/samber/lo"

	"github.com/igoryuha/uow/domain"
)

// MessageProxy intercepts message mutations and registers the entity
// as dirty before delegating.
type MessageProxy struct {
	message *domain.Message
	uow     *UnitOfWork
}

func NewMessageProxy(message *domain.Message, uow *UnitOfWork) *MessageProxy {
	return &MessageProxy{message: message, uow: uow}
}

func (p *MessageProxy) ID() int64 {
	return p.message.ID()
}

func (p *MessageProxy) Body() string {
	return p.message.Body()
}

func (p *MessageProxy) OwnerID() int64 {
	return p.message.OwnerID()
}

// Edit registers the message as dirty, then applies the edit.
func (p *MessageProxy) Edit(body string) error {
	if err := p.uow.RegisterDirty(KindMessage, p.message); err != nil {
		return err
	}
	p.message.Edit(body)
	return nil
}

// UserProxy intercepts user mutations. It wraps the owned messages in
// proxies of their own, so every reachable mutation path is tracked.
// Raw entities never leave the proxy.
type UserProxy struct {
	user     *domain.User
	messages []*MessageProxy
	uow      *UnitOfWork
}

func NewUserProxy(user *domain.User, uow *UnitOfWork) *UserProxy {
	return &UserProxy{
		user: user,
		messages: lo.Map(user.Messages(), func(m *domain.Message, _ int) *MessageProxy {
			return NewMessageProxy(m, uow)
		}),
		uow: uow,
	}
}

func (p *UserProxy) ID() int64 {
	return p.user.ID()
}

func (p *UserProxy) Name() string {
	return p.user.Name()
}

// Messages returns the owned message proxies in load order.
func (p *UserProxy) Messages() []*MessageProxy {
	return p.messages
}

// Rename registers the user as dirty, then applies the rename.
func (p *UserProxy) Rename(name string) error {
	if err := p.uow.RegisterDirty(KindUser, p.user); err != nil {
		return err
	}
	p.user.Rename(name)
	return nil
}

// EditMessage routes the edit through the owned message proxy, so the
// change is registered exactly like a direct proxy edit. An id the
// user does not own is ignored.
func (p *UserProxy) EditMessage(id int64, body string) error {
	for _, m := range p.messages {
		if m.ID() == id {
			return m.Edit(body)
		}
	}
	return nil
}
