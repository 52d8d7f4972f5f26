package sink

import (
	"context"
	"time"

	"github.com/igoryuha/uow/domain/event"
)

// Change is one committed mutation as seen by the timeline.
type Change struct {
	Action   string
	EntityID int64
	Detail   string
	At       time.Time
}

// Timeline holds an in-memory view of committed changes, oldest first.
type Timeline struct {
	Changes []Change
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.UserAdded:
		t.add("user added", evt.ID, evt.Name, evt.At)
	case event.UserRenamed:
		t.add("user renamed", evt.ID, evt.Name, evt.At)
	case event.MessageAdded:
		t.add("message added", evt.ID, evt.Body, evt.At)
	case event.MessageEdited:
		t.add("message edited", evt.ID, evt.Body, evt.At)
	}
	return nil
}

func (t *Timeline) add(action string, id int64, detail string, at time.Time) {
	t.Changes = append(t.Changes, Change{Action: action, EntityID: id, Detail: detail, At: at})
}
