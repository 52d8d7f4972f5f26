//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_message_index.go -package=mocks
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/blugelabs/bluge"

	"github.com/igoryuha/uow/errors"
)

// Hit is one search result.
type Hit struct {
	MessageID int64
	OwnerID   int64
	Body      string
	Score     float64
}

type IMessageIndex interface {
	Index(messageID, ownerID int64, body string) error
	Search(ctx context.Context, terms string, limit int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
}

// MessageIndex writes message bodies into a Bluge index. Indexing is
// an upsert keyed by message id, so re-indexing an edited body
// replaces the previous document.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) IMessageIndex {
	return MessageIndex{writer: writer, log: log}
}

func (s MessageIndex) Index(messageID, ownerID int64, body string) error {
	doc := bluge.NewDocument(strconv.FormatInt(messageID, 10)).
		AddField(bluge.NewTextField("body", body).StoreValue()).
		AddField(bluge.NewKeywordField("owner", strconv.FormatInt(ownerID, 10)).StoreValue())

	if err := s.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %d: %w", messageID, err)
	}
	s.log.Debug("Message indexed", "message", messageID, "owner", ownerID)
	return nil
}

// Search matches terms against message bodies and returns the best
// hits first.
func (s MessageIndex) Search(ctx context.Context, terms string, limit int) ([]Hit, error) {
	if terms == "" {
		return nil, errors.ErrEmptyQuery
	}

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("body")
	request := bluge.NewTopNSearch(limit, query).WithStandardAggregations()

	dmi, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}

	var hits []Hit
	next, err := dmi.Next()
	for err == nil && next != nil {
		hit := Hit{Score: next.Score}
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, convErr := strconv.ParseInt(string(value), 10, 64); convErr == nil {
					hit.MessageID = id
				}
			case "owner":
				if id, convErr := strconv.ParseInt(string(value), 10, 64); convErr == nil {
					hit.OwnerID = id
				}
			case "body":
				hit.Body = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, fmt.Errorf("visit stored fields: %w", visitErr)
		}
		hits = append(hits, hit)
		next, err = dmi.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	s.log.Debug("Search done", "terms", terms, "hits", len(hits))
	return hits, nil
}

// Count returns the number of indexed messages.
func (s MessageIndex) Count(ctx context.Context) (int, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return 0, fmt.Errorf("open index reader: %w", err)
	}
	defer reader.Close()

	request := bluge.NewAllMatches(bluge.NewMatchAllQuery())
	dmi, err := reader.Search(ctx, request)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}

	count := 0
	next, err := dmi.Next()
	for err == nil && next != nil {
		count++
		next, err = dmi.Next()
	}
	if err != nil {
		return 0, fmt.Errorf("iterate matches: %w", err)
	}
	return count, nil
}
