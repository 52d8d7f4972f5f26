//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal.go -package=mocks
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
)

// Entry is one flushed entity change, journaled after the commit that
// carried it. Entries of one commit share a commit id and are numbered
// by flush order.
type Entry struct {
	CommitID string    `json:"commit_id"`
	Seq      int       `json:"seq"`
	Kind     string    `json:"kind"`
	EntityID int64     `json:"entity_id"`
	Op       string    `json:"op"`
	Payload  string    `json:"payload"`
	At       time.Time `json:"at"`
}

type IJournal interface {
	Append(e Entry) error
	Recent(limit int) ([]Entry, error)
}

// Journal is an append-only commit log over BadgerDB.
type Journal struct {
	db  *badger.DB
	log *slog.Logger
}

func NewJournal(db *badger.DB, log *slog.Logger) IJournal {
	return Journal{db: db, log: log}
}

// Append persists one entry.
// The key is formatted as "commit:{timestamp_padded}:{seq}:{commit_id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep entries of one commit adjacent and ordered by flush sequence.
func (j Journal) Append(e Entry) error {
	key := fmt.Sprintf("commit:%019d:%03d:%s",
		e.At.UnixNano(),
		e.Seq,
		e.CommitID,
	)
	bytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Recent retrieves the newest entries first using a reverse prefix scan.
// Thanks to the padded timestamp in the key, entries are naturally
// sorted by time. A limit of zero means no limit.
func (j Journal) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(txn *badger.Txn) error {
		prefix := []byte("commit:")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then walk backwards.
		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999999999")...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(entries) == limit {
				j.log.Debug(fmt.Sprintf("Maximum of %d entries reached", limit))
				break
			}
			item := it.Item()
			err := item.Value(func(value []byte) error {
				var e Entry
				if err := json.Unmarshal(value, &e); err != nil {
					return fmt.Errorf("unmarshal journal entry: %w", err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
