// Package cliapp loads what every command of the command line interface shares.
package cliapp

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/sqlite"
)

// App is the loaded configuration and case.
type App struct {
	Config config.Config
	Case   *casefile.Case
	Logger *slog.Logger
	Client *ai.Client
}

// Load reads .env if present, the configuration and the case file. Logs go to stderr.
func Load() (*App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	var c *casefile.Case
	if cfg.Server.CaseFile != "" {
		c, err = casefile.LoadFile(cfg.Server.CaseFile)
	} else {
		c, err = casefile.Default()
	}
	if err != nil {
		return nil, errors.Wrap(err, "load case file")
	}
	return &App{
		Config: cfg,
		Case:   c,
		Logger: logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.Server.LogLevel)),
		Client: ai.NewClient(cfg.Models.APIKey, cfg.Models.BaseURL),
	}, nil
}

// OpenDatabase opens the transcript database.
func (a *App) OpenDatabase(ctx context.Context) (*sqlite.Database, error) {
	db, err := sqlite.NewDatabase(ctx, a.Config.Server.SqliteURL, a.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", a.Config.Server.SqliteURL))
	}
	return db, nil
}

// NewGame creates a game whose roles are played by the configured models.
func (a *App) NewGame(opts ...game.Option) (*game.Game, error) {
	g, err := game.New(a.Case, a.Client.GameResponders(a.Case, a.Config.Models), a.Config, a.Logger, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "new game")
	}
	return g, nil
}
