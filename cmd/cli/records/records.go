// Package records prints the investigations stored in the transcript database.
package records

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/myrjola/whodunit/cmd/cli/cliapp"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "records",
	Title: "Records",
}

func init() {
	Sessions.Flags().Int("limit", 20, "maximum number of sessions to list")
}

func withRepository(cmd *cobra.Command, fn func(*repositories.TranscriptRepository) error) error {
	app, err := cliapp.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, err := app.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			app.Logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	return fn(repositories.NewTranscriptRepository(db, app.Logger))
}

var Sessions = &cobra.Command{
	Use:     "sessions",
	GroupID: "records",
	Short:   "List recorded investigations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return errors.Wrap(err, "read limit flag")
		}
		return withRepository(cmd, func(repo *repositories.TranscriptRepository) error {
			sessions, listErr := repo.ListSessions(cmd.Context(), limit)
			if listErr != nil {
				return errors.Wrap(listErr, "list sessions")
			}
			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		})
	},
}

var Transcript = &cobra.Command{
	Use:     "transcript <session id>",
	GroupID: "records",
	Short:   "Print the transcript of a recorded investigation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(repo *repositories.TranscriptRepository) error {
			record, getErr := repo.Get(cmd.Context(), args[0])
			if getErr != nil {
				return errors.Wrap(getErr, "get session", slog.String("session_id", args[0]))
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		})
	},
}

func printSessions(w io.Writer, sessions []models.SessionSummary) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "No recorded investigations.")
		return
	}
	r := lipgloss.NewRenderer(w)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Faint(true)).
		Headers("SESSION", "CASE", "STARTED", "QUESTIONS", "SCORE")
	for _, s := range sessions {
		score := "open"
		if s.Score != nil {
			score = strconv.Itoa(*s.Score)
		}
		t.Row(s.ID, s.CaseID, s.Started, strconv.Itoa(s.ExchangeCount), score)
	}
	_, _ = fmt.Fprintln(w, t.Render())
}

func printRecord(w io.Writer, record *models.SessionRecord) {
	_, _ = fmt.Fprintf(w, "Session %s (%s), started %s\n", record.ID, record.CaseID, record.Started)
	suspect := ""
	for _, e := range record.Exchanges {
		if e.SuspectID != suspect {
			suspect = e.SuspectID
			_, _ = fmt.Fprintf(w, "\n[%s]\n", suspect)
		}
		revised := ""
		if e.Revised {
			revised = " (revised)"
		}
		_, _ = fmt.Fprintf(w, "%d. Q: %s\n   A: %s%s\n", e.Order, e.Question, e.Answer, revised)
	}
	if record.Verdict == nil {
		_, _ = fmt.Fprintln(w, "\nNo accusation was made.")
		return
	}
	v := record.Verdict
	_, _ = fmt.Fprintf(w, "\nAccused %s with the %s over %s. Score %d/100 after %d turns.\n",
		v.Accusation.SuspectID, v.Accusation.Weapon, v.Accusation.Motive, v.Score, v.TotalTurns)
	if v.Narrative != "" {
		_, _ = fmt.Fprintln(w, v.Narrative)
	}
}
