package play

import (
	"fmt"
	"log/slog"

	"github.com/myrjola/whodunit/cmd/cli/cliapp"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "play",
	Title: "Investigation",
}

func init() {
	Play.Flags().Bool("no-record", false, "do not record the investigation in the database")
	Auto.Flags().Bool("no-record", false, "do not record the investigation in the database")
}

// newGame creates a game that is recorded in the database unless --no-record is given. The returned function
// closes the database.
func newGame(cmd *cobra.Command, app *cliapp.App) (*game.Game, func(), error) {
	noRecord, err := cmd.Flags().GetBool("no-record")
	if err != nil {
		return nil, nil, errors.Wrap(err, "read no-record flag")
	}
	if noRecord {
		g, gameErr := app.NewGame()
		return g, func() {}, gameErr
	}
	ctx := cmd.Context()
	db, err := app.OpenDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			app.Logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}
	g, err := app.NewGame(game.WithJournal(repositories.NewTranscriptRepository(db, app.Logger)))
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return g, closeDB, nil
}

var Play = &cobra.Command{
	Use:     "play",
	GroupID: "play",
	Short:   "Interrogate the suspects",
	Long:    "Starts an interactive interrogation of the suspects of the case in the terminal",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliapp.Load()
		if err != nil {
			return err
		}
		g, closeDB, err := newGame(cmd, app)
		if err != nil {
			return err
		}
		defer closeDB()
		session := &Session{
			Game:   g,
			Config: app.Config.Game,
			Logger: app.Logger,
			In:     cmd.InOrStdin(),
			Out:    cmd.OutOrStdout(),
		}
		return session.Run(cmd.Context())
	},
}

var Auto = &cobra.Command{
	Use:     "auto",
	GroupID: "play",
	Short:   "Let the detective solve the case",
	Long:    "Runs the automated detective from the first question to the verdict and prints the report",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cliapp.Load()
		if err != nil {
			return err
		}
		g, closeDB, err := newGame(cmd, app)
		if err != nil {
			return err
		}
		defer closeDB()
		session := &Session{
			Game:   g,
			Config: app.Config.Game,
			Logger: app.Logger,
			Out:    cmd.OutOrStdout(),
		}
		session.styles = newStyles(session.Out)
		session.runAutopilot(cmd.Context())
		if _, ok := g.Verdict(); !ok {
			return errors.New("the case was not closed")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Session:", g.SessionID())
		return nil
	},
}
