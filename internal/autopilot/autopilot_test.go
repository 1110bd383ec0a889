package autopilot_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/myrjola/whodunit/internal/autopilot"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/deduction"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/game/gametest"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// distinctQuestions never share a non stop word token between each other.
var distinctQuestions = []string{
	"Where were you at midnight?",
	"Who inherits the estate?",
	"What weapon was missing?",
	"Which servants heard shouting?",
	"Why did Victor quarrel?",
	"When did guests leave?",
	"How were finances arranged?",
	"Whose footsteps echoed upstairs?",
	"Did anybody visit the library?",
	"Could someone enter unnoticed?",
	"Are letters hidden somewhere?",
	"Would Eleanor lie?",
	"Did the doctor return?",
	"Which rooms stayed locked?",
	"Was brandy served late?",
	"Does anyone keep diaries?",
	"Might Marcus benefit?",
	"Did Lydia argue loudly?",
}

func newDriver(t *testing.T, cfg config.Config) (*autopilot.Driver, *game.Game, *gametest.Stubs, *[]autopilot.Event) {
	t.Helper()
	g, stubs := gametest.NewGame(t, cfg)
	var events []autopilot.Event
	d := autopilot.New(g, cfg.Game, testhelpers.NewLogger(io.Discard), func(e autopilot.Event) {
		events = append(events, e)
	})
	return d, g, stubs, &events
}

func TestDriver_Run(t *testing.T) {
	d, g, stubs, events := newDriver(t, config.Default())
	stubs.Planner.Replies = append([]string(nil), distinctQuestions...)

	report, err := d.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 18, report.Asked, "3 suspects x (4 + 2)")
	require.Equal(t, 0, report.Skipped)
	require.Equal(t, "s1", report.Accusation.SuspectID)
	require.True(t, report.Verdict.Won())
	require.Equal(t, 100, report.Verdict.Score)

	status := g.Status()
	require.Equal(t, 18, status.TotalTurns)
	require.True(t, status.AccusationMade)
	require.Len(t, g.Exchanges("s1"), 6)
	require.Equal(t, "s1", status.CurrentSuspect, "the active suspect is restored")

	var phases []autopilot.Phase
	for _, e := range *events {
		if e.Kind == autopilot.EventPhase {
			phases = append(phases, e.Phase)
		}
	}
	require.Equal(t, []autopilot.Phase{
		autopilot.PhaseFirstPass, autopilot.PhaseSecondPass, autopilot.PhaseDeduction, autopilot.PhaseAccusation,
	}, phases)
	last := (*events)[len(*events)-1]
	require.Equal(t, autopilot.EventVerdict, last.Kind)
}

func TestDriver_Run_duplicateIsReframedThenSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.Game.FirstPass = 2
	cfg.Game.SecondPass = 0
	d, g, stubs, events := newDriver(t, cfg)
	stubs.Planner.Replies = []string{
		// s1: fresh question, then a duplicate that is reframed into a fresh one.
		"Where were you at midnight?",
		"Where were you exactly at midnight?",
		"Who inherits the estate?",
		// s2: fresh question, then a duplicate twice in a row.
		"Where were you at midnight?",
		"Where were you at midnight?",
		"Where were you, at midnight?",
		// s3: fresh questions.
		"What weapon was missing?",
		"Which servants heard shouting?",
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 5, report.Asked)
	require.Equal(t, 1, report.Skipped)
	require.Len(t, g.Exchanges("s1"), 2)
	require.Len(t, g.Exchanges("s2"), 1, "the skipped cycle consumes no turn")
	require.Len(t, g.Exchanges("s3"), 2)

	prompts := stubs.Planner.Prompts()
	require.Contains(t, prompts[2], "  - "+autopilot.ReframePrefix+"Where were you exactly at midnight?")

	var skipped []string
	for _, e := range *events {
		if e.Kind == autopilot.EventSkipped {
			skipped = append(skipped, e.SuspectID)
		}
	}
	require.Equal(t, []string{"s2"}, skipped)
}

func TestDriver_Run_seedsFromManualQuestions(t *testing.T) {
	cfg := config.Default()
	cfg.Game.FirstPass = 1
	cfg.Game.SecondPass = 0
	d, g, stubs, _ := newDriver(t, cfg)
	_, err := g.Interrogate(context.Background(), "Where were you at midnight?")
	require.NoError(t, err)
	stubs.Planner.Replies = []string{
		"Where were you at midnight?",
		"Where were you at midnight?",
		"Who inherits the estate?",
		"What weapon was missing?",
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, report.Asked)
	require.Equal(t, 1, report.Skipped)
	require.Len(t, g.Exchanges("s1"), 1, "only the manual question")
	require.Contains(t, stubs.Planner.Prompts()[0], "  - Where were you at midnight?", "manual questions are covered topics")
}

func TestDriver_Run_stopsAtTurnCap(t *testing.T) {
	cfg := config.Default()
	cfg.Game.MaxTurns = 5
	d, g, stubs, _ := newDriver(t, cfg)
	stubs.Planner.Replies = append([]string(nil), distinctQuestions...)

	report, err := d.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 5, report.Asked)
	require.Equal(t, 5, g.Status().TotalTurns)
	require.Equal(t, 5, stubs.Planner.Calls())
	require.True(t, report.Verdict.CorrectSuspect)
}

func TestDriver_Run_abortsWhenDeductionFails(t *testing.T) {
	cfg := config.Default()
	cfg.Game.FirstPass = 1
	cfg.Game.SecondPass = 0
	d, g, stubs, events := newDriver(t, cfg)
	stubs.Planner.Replies = append([]string(nil), distinctQuestions...)
	stubs.Deducer.Default = "I am fairly sure it was the butler."

	report, err := d.Run(context.Background())

	require.ErrorIs(t, err, autopilot.ErrDeductionFailed)
	require.ErrorIs(t, err, deduction.ErrNoDeduction)
	require.Equal(t, 3, report.Asked)
	require.Equal(t, 0, stubs.Evaluator.Calls(), "no guess is submitted")
	require.False(t, g.Status().AccusationMade)
	for _, e := range *events {
		require.NotEqual(t, autopilot.PhaseAccusation, e.Phase)
	}
}

func TestDriver_Run_afterAccusation(t *testing.T) {
	d, g, _, _ := newDriver(t, config.Default())
	_, err := g.MakeAccusation(context.Background(), "s2", "poison", "revenge")
	require.NoError(t, err)

	_, err = d.Run(context.Background())

	require.ErrorIs(t, err, game.ErrAccusationMade)
}

func TestPhase_String(t *testing.T) {
	require.Equal(t, "second pass", autopilot.PhaseSecondPass.String())
	require.True(t, strings.HasPrefix(autopilot.ReframePrefix, "[AVOID"))
}
