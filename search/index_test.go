package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/igoryuha/uow/errors"
)

func newIndex(t *testing.T) IMessageIndex {
	t.Helper()
	req := require.New(t)

	blugeCfg := bluge.DefaultConfig(t.TempDir())
	blugeWriter, err := bluge.OpenWriter(blugeCfg)
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	return NewMessageIndex(blugeWriter, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func Test_Search_Finds_Indexed_Bodies(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)
	ctx := context.Background()

	req.NoError(index.Index(1, 1, "body 1"))
	req.NoError(index.Index(2, 1, "body 2"))
	req.NoError(index.Index(4, 2, "unrelated content"))

	hits, err := index.Search(ctx, "body", 10)
	req.NoError(err)
	req.Len(hits, 2)
	for _, hit := range hits {
		req.Equal(int64(1), hit.OwnerID)
		req.Contains(hit.Body, "body")
		req.Greater(hit.Score, 0.0)
	}
}

func Test_Index_Is_An_Upsert(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)
	ctx := context.Background()

	req.NoError(index.Index(1, 1, "body 1"))
	req.NoError(index.Index(1, 1, "new message body 1"))

	count, err := index.Count(ctx)
	req.NoError(err)
	req.Equal(1, count)

	hits, err := index.Search(ctx, "new message", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(int64(1), hits[0].MessageID)
	req.Equal("new message body 1", hits[0].Body)
}

func Test_Search_Rejects_Empty_Terms(t *testing.T) {
	req := require.New(t)
	index := newIndex(t)

	_, err := index.Search(context.Background(), "", 10)
	req.ErrorIs(err, errors.ErrEmptyQuery)
}

func Test_ParseQuery_Extracts_Terms_And_Limit(t *testing.T) {
	req := require.New(t)

	query := ParseQuery("new message body --limit 5")
	req.Equal("new message body", query.Terms)
	req.Equal(5, query.Limit)
}

func Test_ParseQuery_Defaults(t *testing.T) {
	req := require.New(t)

	query := ParseQuery("body")
	req.Equal("body", query.Terms)
	req.Equal(10, query.Limit)

	query = ParseQuery("body --limit nonsense")
	req.Equal("body", query.Terms)
	req.Equal(10, query.Limit)
}
