package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/igoryuha/uow/domain/event"
	"github.com/igoryuha/uow/search"
)

// IndexSink keeps the full-text index in step with committed message
// bodies.
type IndexSink struct {
	index search.IMessageIndex
	log   *slog.Logger
}

func NewIndexSink(index search.IMessageIndex, log *slog.Logger) IndexSink {
	return IndexSink{index: index, log: log}
}

func (s IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageAdded:
		return s.index.Index(evt.ID, evt.OwnerID, evt.Body)
	case event.MessageEdited:
		return s.index.Index(evt.ID, evt.OwnerID, evt.Body)
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}
