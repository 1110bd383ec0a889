package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/pprofserver"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger         *slog.Logger
	cfg            config.Config
	caseFile       *casefile.Case
	responders     game.Responders
	sessionManager *scs.SessionManager
	transcripts    *repositories.TranscriptRepository
	games          *registry
	htmx           *htmx.HTMX
	pages          *pages
}

func main() {
	// A missing .env file is fine, the environment may be configured otherwise.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The level comes from the same configuration run loads, an invalid one is reported at the default level.
	level := slog.LevelInfo
	if cfg, err := config.Load(os.LookupEnv); err == nil {
		level = logging.ParseLevel(cfg.Server.LogLevel)
	}
	logger := logging.NewLogger(os.Stdout, level)

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // the deferred stop is irrelevant on exit.
	}
}

// run starts the web server and blocks until ctx is cancelled or a component fails.
//
// lookupEnv has the same signature as [os.LookupEnv].
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	var caseFile *casefile.Case
	if cfg.Server.CaseFile != "" {
		caseFile, err = casefile.LoadFile(cfg.Server.CaseFile)
	} else {
		caseFile, err = casefile.Default()
	}
	if err != nil {
		return errors.Wrap(err, "load case file")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.Server.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	pagesCache, err := newPages()
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}

	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	defer store.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Server.SessionLifetime
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true

	app := &application{
		logger:         logger,
		cfg:            cfg,
		caseFile:       caseFile,
		responders:     ai.NewClient(cfg.Models.APIKey, cfg.Models.BaseURL).GameResponders(caseFile, cfg.Models),
		sessionManager: sessionManager,
		transcripts:    repositories.NewTranscriptRepository(db, logger),
		games:          newRegistry(),
		htmx:           htmx.New(),
		pages:          pagesCache,
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.Wrap(err, "TCP listen")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.serve(ctx, listener)
	})
	g.Go(func() error {
		return db.RunOptimizer(ctx, optimizeInterval)
	})
	g.Go(func() error {
		return app.games.runEviction(ctx, cfg.Server.SessionLifetime)
	})
	if cfg.Server.PprofPort != "" {
		g.Go(func() error {
			return pprofserver.Run(ctx, fmt.Sprintf("localhost:%s", cfg.Server.PprofPort), logger)
		})
	}
	return g.Wait() //nolint:wrapcheck // components wrap their own errors.
}
