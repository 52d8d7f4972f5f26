//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"github.com/igoryuha/uow/domain/event"
)

// EventSink receives domain events after a successful commit.
// Sinks are best effort: a failing sink is logged, never retried, and
// never affects the committed transaction.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}
