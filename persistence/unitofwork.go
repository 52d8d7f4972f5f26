package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/igoryuha/uow/contract"
	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/domain/event"
	"github.com/igoryuha/uow/errors"
)

// changeSet groups registered entities by kind, preserving both the
// order kinds first appeared and the per-kind registration order.
// Registration is keyed by identity: the first registration keeps its
// slot, later ones are dropped. Entries hold live pointers, so the
// state flushed at commit is always the latest one.
type changeSet struct {
	order  []Kind
	byKind map[Kind][]Entity
	seen   map[Kind]map[int64]struct{}
}

func newChangeSet() *changeSet {
	return &changeSet{
		byKind: make(map[Kind][]Entity),
		seen:   make(map[Kind]map[int64]struct{}),
	}
}

func (c *changeSet) add(kind Kind, e Entity) {
	if c.has(kind, e.ID()) {
		return
	}
	ids, ok := c.seen[kind]
	if !ok {
		ids = make(map[int64]struct{})
		c.seen[kind] = ids
		c.order = append(c.order, kind)
	}
	ids[e.ID()] = struct{}{}
	c.byKind[kind] = append(c.byKind[kind], e)
}

func (c *changeSet) has(kind Kind, id int64) bool {
	_, ok := c.seen[kind][id]
	return ok
}

func (c *changeSet) kinds() []Kind {
	return c.order
}

func (c *changeSet) entities(kind Kind) []Entity {
	return c.byKind[kind]
}

func (c *changeSet) size() int {
	n := 0
	for _, entities := range c.byKind {
		n += len(entities)
	}
	return n
}

func (c *changeSet) clear() {
	c.order = nil
	c.byKind = make(map[Kind][]Entity)
	c.seen = make(map[Kind]map[int64]struct{})
}

// UnitOfWork collects new and changed entities during a business
// transaction and flushes them in a single commit. One unit owns one
// transaction and is driven by one goroutine.
type UnitOfWork struct {
	tx       Tx
	registry *Registry
	news     *changeSet
	dirties  *changeSet
	sinks    []contract.EventSink
	log      *slog.Logger
	done     bool
}

func NewUnitOfWork(tx Tx, registry *Registry, log *slog.Logger) *UnitOfWork {
	return &UnitOfWork{
		tx:       tx,
		registry: registry,
		news:     newChangeSet(),
		dirties:  newChangeSet(),
		log:      log,
	}
}

// RegisterSinks subscribes post-commit listeners. Sinks run after the
// transaction commits and never affect its outcome.
func (u *UnitOfWork) RegisterSinks(sinks ...contract.EventSink) {
	u.sinks = append(u.sinks, sinks...)
}

// RegisterNew schedules an entity for insertion.
func (u *UnitOfWork) RegisterNew(kind Kind, e Entity) error {
	if u.done {
		return errors.ErrCommitted
	}
	u.news.add(kind, e)
	return nil
}

// RegisterDirty schedules an entity for update. Registering the same
// identity again is a no-op. An entity already scheduled for insertion
// stays an insert: the pending insert carries its latest state.
func (u *UnitOfWork) RegisterDirty(kind Kind, e Entity) error {
	if u.done {
		return errors.ErrCommitted
	}
	if u.news.has(kind, e.ID()) {
		return nil
	}
	u.dirties.add(kind, e)
	return nil
}

// Commit flushes inserts then updates through the registered mappers
// and commits the transaction. Mappers for every scheduled kind are
// resolved before the first statement runs, so an unregistered kind
// aborts with the store untouched. Any flush error rolls back: the
// commit is all or nothing. After a successful commit the unit is
// spent and further use returns ErrCommitted.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return errors.ErrCommitted
	}

	mappers, err := u.resolveMappers()
	if err != nil {
		u.fail()
		return err
	}

	if err := u.flush(ctx, mappers); err != nil {
		u.fail()
		return err
	}

	if err := u.tx.Commit(); err != nil {
		u.fail()
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.done = true

	u.notify(ctx, u.events(time.Now()))

	u.news.clear()
	u.dirties.clear()
	return nil
}

// Rollback aborts the transaction. Calling it on a spent unit is a
// no-op, which makes it safe to defer alongside Commit.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback()
}

func (u *UnitOfWork) fail() {
	u.done = true
	if err := u.tx.Rollback(); err != nil {
		u.log.Error("Rollback failed", "error", err)
	}
}

func (u *UnitOfWork) resolveMappers() (map[Kind]Mapper, error) {
	mappers := make(map[Kind]Mapper)
	for _, kind := range u.news.kinds() {
		if err := u.resolve(kind, mappers); err != nil {
			return nil, err
		}
	}
	for _, kind := range u.dirties.kinds() {
		if err := u.resolve(kind, mappers); err != nil {
			return nil, err
		}
	}
	return mappers, nil
}

func (u *UnitOfWork) resolve(kind Kind, mappers map[Kind]Mapper) error {
	if _, ok := mappers[kind]; ok {
		return nil
	}
	mapper, err := u.registry.Get(kind)
	if err != nil {
		return err
	}
	mappers[kind] = mapper
	return nil
}

func (u *UnitOfWork) flush(ctx context.Context, mappers map[Kind]Mapper) error {
	for _, kind := range u.news.kinds() {
		if err := mappers[kind].InsertAll(ctx, u.news.entities(kind)); err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
	}
	for _, kind := range u.dirties.kinds() {
		if err := mappers[kind].UpdateAll(ctx, u.dirties.entities(kind)); err != nil {
			return fmt.Errorf("update %s: %w", kind, err)
		}
	}
	return nil
}

// events builds one notification per flushed entity, inserts first,
// in flush order.
func (u *UnitOfWork) events(at time.Time) []event.DomainEvent {
	out := make([]event.DomainEvent, 0, u.news.size()+u.dirties.size())
	for _, kind := range u.news.kinds() {
		for _, e := range u.news.entities(kind) {
			if evt, ok := added(e, at); ok {
				out = append(out, evt)
			}
		}
	}
	for _, kind := range u.dirties.kinds() {
		for _, e := range u.dirties.entities(kind) {
			if evt, ok := changed(e, at); ok {
				out = append(out, evt)
			}
		}
	}
	return out
}

func (u *UnitOfWork) notify(ctx context.Context, events []event.DomainEvent) {
	for _, evt := range events {
		for _, sink := range u.sinks {
			if err := sink.Consume(ctx, evt); err != nil {
				u.log.Error("Sink failed", "event", fmt.Sprintf("%T", evt), "error", err)
			}
		}
	}
}

func added(e Entity, at time.Time) (event.DomainEvent, bool) {
	switch v := e.(type) {
	case *domain.User:
		return event.UserAdded{ID: v.ID(), Name: v.Name(), At: at}, true
	case *domain.Message:
		return event.MessageAdded{ID: v.ID(), OwnerID: v.OwnerID(), Body: v.Body(), At: at}, true
	default:
		return nil, false
	}
}

func changed(e Entity, at time.Time) (event.DomainEvent, bool) {
	switch v := e.(type) {
	case *domain.User:
		return event.UserRenamed{ID: v.ID(), Name: v.Name(), At: at}, true
	case *domain.Message:
		return event.MessageEdited{ID: v.ID(), OwnerID: v.OwnerID(), Body: v.Body(), At: at}, true
	default:
		return nil, false
	}
}
