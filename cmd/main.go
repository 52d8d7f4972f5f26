package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"github.com/igoryuha/uow/domain"
	"github.com/igoryuha/uow/internal"
	"github.com/igoryuha/uow/journal"
	"github.com/igoryuha/uow/mappers"
	"github.com/igoryuha/uow/moderation"
	"github.com/igoryuha/uow/observability"
	"github.com/igoryuha/uow/persistence"
	"github.com/igoryuha/uow/repositories"
	"github.com/igoryuha/uow/search"
	"github.com/igoryuha/uow/services"
	"github.com/igoryuha/uow/sink"
	"github.com/igoryuha/uow/storage"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Driver terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, executes one edit scenario through the
// unit of work and reads the outcome back outside of it.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	log := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Relational store (SQLite)
	db, err := storage.Open(config.SqliteFilepath)
	if err != nil {
		return exitRuntime, fmt.Errorf("store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing SQLite...")
		_ = db.Close()
	}()

	if err := storage.Migrate(ctx, db); err != nil {
		return exitRuntime, fmt.Errorf("migration failed: %w", err)
	}
	if err := storage.Seed(ctx, db, log); err != nil {
		return exitRuntime, fmt.Errorf("seeding failed: %w", err)
	}

	// 3. Commit journal (BadgerDB)
	badgerDB, err := badger.Open(buildBadgerOpts(config, log, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("journal opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = badgerDB.Close()
	}()

	if log.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint)
		log.Info("Debug journal inspector available", "url", url)
		database.StartDebugServer(badgerDB, debugPort, endpoint, JournalMapper)
	}

	// 4. Full-text index (Bluge)
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 5. Edit session: one transaction drives one unit of work
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("begin transaction: %w", err)
	}

	registry := persistence.NewRegistry(log)
	registry.Register(persistence.KindUser, mappers.NewUserMapper(tx, log))
	registry.Register(persistence.KindMessage, mappers.NewMessageMapper(tx, log))

	uow := persistence.NewUnitOfWork(tx, registry, log)
	defer func() { _ = uow.Rollback() }()

	index := search.NewMessageIndex(blugeWriter, log)
	timeline := sink.NewTimeline()
	uow.RegisterSinks(
		sink.NewJournalSink(journal.NewJournal(badgerDB, log), log),
		sink.NewIndexSink(index, log),
		timeline,
	)

	moderator, err := moderation.NewModerator(internal.Words(config.ModerationWords), charReplacement, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation setup failed: %w", err)
	}

	repository := repositories.NewUserRepository(tx, uow, log)
	interactor := services.NewInteractor(repository, uow, moderator, log)

	// 6. The scenario: edit two messages and rename their owner, one commit.
	err = interactor.Execute(ctx, domain.EditUserCommand{
		UserID:  1,
		NewName: "new username",
		Edits: []domain.MessageEdit{
			{MessageID: 1, Body: "new message body 1"},
			{MessageID: 2, Body: "new message body 2"},
		},
	})
	if err != nil {
		return exitRuntime, fmt.Errorf("edit scenario failed: %w", err)
	}

	// 7. Read back outside the unit of work and print the outcome.
	if err := printOutcome(ctx, db, index, timeline, config.Colours, log); err != nil {
		return exitRuntime, err
	}

	// 8. Self stats before leaving
	monitor, err := observability.NewMonitor(log)
	if err != nil {
		return exitRuntime, err
	}
	stats, err := monitor.Snapshot()
	if err != nil {
		return exitRuntime, err
	}
	log.Info("Run finished",
		"ram_bytes", stats.RamBytes,
		"alloc_mb", stats.AllocMemMb,
		"gc_cycles", stats.NumGC,
		"pid_status", stats.PidStatus)

	return exitOK, nil
}

// printOutcome queries the store directly, without the unit of work, and
// renders the committed state, the timeline and a search pass.
func printOutcome(ctx context.Context, db *sql.DB, index search.IMessageIndex,
	timeline *sink.Timeline, colours bool, log *slog.Logger) error {
	banner("Post-commit state (read outside the unit of work)", colours)

	userMapper := mappers.NewUserMapper(db, log)
	messageMapper := mappers.NewMessageMapper(db, log)

	user, err := userMapper.WithID(ctx, 1)
	if err != nil {
		return err
	}

	table := newTable([]string{"Entity", "ID", "Value"})
	table.Append([]string{"user", strconv.FormatInt(user.ID(), 10), user.Name()})
	for _, id := range []int64{1, 2} {
		msg, err := messageMapper.WithID(ctx, id)
		if err != nil {
			return err
		}
		table.Append([]string{"message", strconv.FormatInt(msg.ID(), 10), msg.Body()})
	}
	table.Render()

	banner("Timeline of committed changes", colours)
	changes := newTable([]string{"Action", "Entity ID", "Detail", "At"})
	for _, change := range timeline.Changes {
		changes.Append([]string{
			change.Action,
			strconv.FormatInt(change.EntityID, 10),
			change.Detail,
			change.At.Format("15:04:05"),
		})
	}
	changes.Render()

	banner("Full-text search over committed bodies", colours)
	total, err := index.Count(ctx)
	if err != nil {
		return err
	}
	hits, err := index.Search(ctx, "message", 5)
	if err != nil {
		return err
	}
	results := newTable([]string{"Message ID", "Owner", "Body", "Score"})
	for _, hit := range hits {
		results.Append([]string{
			strconv.FormatInt(hit.MessageID, 10),
			strconv.FormatInt(hit.OwnerID, 10),
			hit.Body,
			fmt.Sprintf("%.3f", hit.Score),
		})
	}
	results.Render()
	fmt.Printf("\n%d message(s) indexed in total\n", total)

	return nil
}

func banner(title string, colours bool) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Printf("\n%s\n", header)
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

// JournalMapper renders one journal entry for the debug inspector.
func JournalMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var e journal.Entry
	if err := json.Unmarshal(val, &e); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}

	row.Type = strings.ToUpper(e.Op)
	row.Timestamp = e.At.Format("15:04:05")
	row.Namespace = e.Kind
	row.EntityID = strconv.FormatInt(e.EntityID, 10)
	row.Detail = e.Payload
	row.Scores = fmt.Sprintf("commit:%.8s seq:%d", e.CommitID, e.Seq)
	return row
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
