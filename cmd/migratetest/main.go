// Command migratetest migrates a copy of a production database to the current schema and checks that the
// recorded games survived.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/sqlite"
	"github.com/myrjola/whodunit/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd // 5 seconds
	defer cancel()

	if err := migrate(ctx, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "migration test failed", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
}

func migrate(ctx context.Context, logger *slog.Logger) error {
	sqliteURL, ok := os.LookupEnv("WHODUNIT_SQLITE_URL")
	if !ok {
		return errors.New("WHODUNIT_SQLITE_URL not set")
	}

	db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", sqliteURL))
	}
	defer func() {
		_ = db.Close()
	}()

	// Reading every recent session through the repository checks the migrated tables end to end.
	transcripts := repositories.NewTranscriptRepository(db, logger)
	sessions, err := transcripts.ListSessions(ctx, 100) //nolint:mnd // a sample is enough.
	if err != nil {
		return errors.Wrap(err, "list sessions")
	}
	exchanges := 0
	for _, s := range sessions {
		record, getErr := transcripts.Get(ctx, s.ID)
		if getErr != nil {
			return errors.Wrap(getErr, "get session", slog.String("session_id", s.ID))
		}
		if len(record.Exchanges) != s.ExchangeCount {
			return errors.New("exchange count mismatch", slog.String("session_id", s.ID),
				slog.Int("listed", s.ExchangeCount), slog.Int("read", len(record.Exchanges)))
		}
		exchanges += len(record.Exchanges)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "sessions readable",
		slog.Int("sessions", len(sessions)), slog.Int("exchanges", exchanges))
	return nil
}
