package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"github.com/igoryuha/uow/internal"
	"github.com/igoryuha/uow/journal"
	"github.com/igoryuha/uow/search"
)

// Read-only companion of the driver: lists the commit journal, or runs
// a query against the message index with -find.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to the commit journal")
	indexPath := flag.String("index", config.BlugeFilepath, "Path to the message index")
	limit := flag.Int("limit", 20, "Newest journal entries to show")
	find := flag.String("find", "", "Search committed bodies instead of listing the journal, e.g. \"new message --limit 5\"")
	flag.Parse()

	logger := logs.GetLoggerFromString(config.LogLevel)

	if *find != "" {
		if err := findMessages(*indexPath, *find, logger); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := listJournal(*dbPath, *limit, logger); err != nil {
		log.Fatal(err)
	}
}

func listJournal(path string, limit int, logger *slog.Logger) error {
	db, err := openDB(path)
	if err != nil {
		return fmt.Errorf("error while opening Badger: %w", err)
	}
	defer db.Close()

	entries, err := journal.NewJournal(db, logger).Recent(limit)
	if err != nil {
		return err
	}

	table := newTable([]string{"Commit", "Seq", "Op", "Kind", "Entity ID", "Payload", "At"})
	for _, e := range entries {
		// The first 8 characters of the commit id are enough to group rows
		displayID := e.CommitID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}

		table.Append([]string{
			displayID,
			strconv.Itoa(e.Seq),
			strings.ToUpper(e.Op),
			e.Kind,
			strconv.FormatInt(e.EntityID, 10),
			e.Payload,
			e.At.Format("15:04:05"),
		})
	}
	table.Render()
	fmt.Printf("\n%d journal entrie(s), newest first\n", len(entries))

	return nil
}

func findMessages(path, input string, logger *slog.Logger) error {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return fmt.Errorf("error while opening index: %w", err)
	}
	defer writer.Close()

	query := search.ParseQuery(input)
	hits, err := search.NewMessageIndex(writer, logger).Search(context.Background(), query.Terms, query.Limit)
	if err != nil {
		return err
	}

	table := newTable([]string{"Message ID", "Owner", "Body", "Score"})
	for _, hit := range hits {
		table.Append([]string{
			strconv.FormatInt(hit.MessageID, 10),
			strconv.FormatInt(hit.OwnerID, 10),
			hit.Body,
			fmt.Sprintf("%.3f", hit.Score),
		})
	}
	table.Render()
	fmt.Printf("\n%d hit(s) for %q\n", len(hits), query.Terms)

	return nil
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
