// Package sink adapts post-commit listeners to the event stream of
// the unit of work.
package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/igoryuha/uow/domain/event"
	"github.com/igoryuha/uow/journal"
	"github.com/igoryuha/uow/persistence"
)

// JournalSink appends one journal entry per consumed event. A sink
// instance serves a single unit of work, so every entry it writes
// shares one commit id, numbered in consumption order.
type JournalSink struct {
	journal  journal.IJournal
	log      *slog.Logger
	commitID string
	seq      int
}

func NewJournalSink(j journal.IJournal, log *slog.Logger) *JournalSink {
	return &JournalSink{
		journal:  j,
		log:      log,
		commitID: uuid.New().String(),
	}
}

func (s *JournalSink) Consume(_ context.Context, e event.DomainEvent) error {
	entry, ok := toEntry(e)
	if !ok {
		s.log.Debug(fmt.Sprintf("Not implemented event : %v", e))
		return nil
	}

	entry.CommitID = s.commitID
	entry.Seq = s.seq
	s.seq++
	return s.journal.Append(entry)
}

func toEntry(e event.DomainEvent) (journal.Entry, bool) {
	switch evt := e.(type) {
	case event.UserAdded:
		return journal.Entry{Kind: persistence.KindUser.String(), EntityID: evt.ID, Op: journal.OpInsert, Payload: evt.Name, At: evt.At}, true
	case event.UserRenamed:
		return journal.Entry{Kind: persistence.KindUser.String(), EntityID: evt.ID, Op: journal.OpUpdate, Payload: evt.Name, At: evt.At}, true
	case event.MessageAdded:
		return journal.Entry{Kind: persistence.KindMessage.String(), EntityID: evt.ID, Op: journal.OpInsert, Payload: evt.Body, At: evt.At}, true
	case event.MessageEdited:
		return journal.Entry{Kind: persistence.KindMessage.String(), EntityID: evt.ID, Op: journal.OpUpdate, Payload: evt.Body, At: evt.At}, true
	default:
		return journal.Entry{}, false
	}
}
