// Package autopilot plays a game without a human detective: it questions every suspect twice over, deduces an
// accusation from the transcripts and submits it.
package autopilot

import (
	"context"
	"log/slog"

	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/dedup"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
)

// ReframePrefix marks a rejected question in the covered topics of the retry.
const ReframePrefix = "[AVOID — too similar to previous] "

var ErrDeductionFailed = errors.NewSentinel("deduction failed")

// Phase numbers the stages of a run.
type Phase int

const (
	PhaseFirstPass Phase = iota + 1
	PhaseSecondPass
	PhaseDeduction
	PhaseAccusation
)

func (p Phase) String() string {
	switch p {
	case PhaseFirstPass:
		return "first pass"
	case PhaseSecondPass:
		return "second pass"
	case PhaseDeduction:
		return "deduction"
	case PhaseAccusation:
		return "accusation"
	default:
		return "unknown"
	}
}

// EventKind tells what an Event reports.
type EventKind int

const (
	EventPhase EventKind = iota
	EventAsked
	EventSkipped
	EventDeduced
	EventVerdict
)

// Event reports progress of a run.
type Event struct {
	Kind       EventKind
	Phase      Phase
	SuspectID  string
	Question   string
	Answer     string
	Accusation models.Accusation
	Verdict    models.Verdict
}

// Observer receives events synchronously.
type Observer func(Event)

// Report summarizes a run.
type Report struct {
	Asked      int
	Skipped    int
	Accusation models.Accusation
	Verdict    models.Verdict
}

// Driver runs the automated detective against a game.
type Driver struct {
	game     *game.Game
	cfg      config.Game
	logger   *slog.Logger
	observer Observer
}

// New creates a driver. observer may be nil.
func New(g *game.Game, cfg config.Game, logger *slog.Logger, observer Observer) *Driver {
	if observer == nil {
		observer = func(Event) {}
	}
	return &Driver{
		game:     g,
		cfg:      cfg,
		logger:   logger.With(slog.String("source", "autopilot")),
		observer: observer,
	}
}

// Run plays the game to its verdict.
//
// Questions already asked by a human are taken into account. If the deduction fails the run stops before
// accusing anyone and the error wraps ErrDeductionFailed.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	var report Report
	if d.game.Status().AccusationMade {
		return report, game.ErrAccusationMade
	}
	ctx = d.withSession(ctx)
	active := d.game.CurrentSuspect().ID
	defer d.game.SwitchSuspect(active)

	var memory dedup.Memory
	covered := make(map[string][]string)
	ids := make([]string, 0)
	for _, s := range d.game.Suspects() {
		ids = append(ids, s.ID)
		for _, e := range d.game.Exchanges(s.ID) {
			covered[s.ID] = append(covered[s.ID], e.Question)
		}
		memory.Seed(s.ID, covered[s.ID])
	}

	passes := []struct {
		phase Phase
		quota int
	}{
		{PhaseFirstPass, d.cfg.FirstPass},
		{PhaseSecondPass, d.cfg.SecondPass},
	}
	for _, pass := range passes {
		d.observer(Event{Kind: EventPhase, Phase: pass.phase})
		d.logger.LogAttrs(ctx, slog.LevelInfo, "starting pass",
			slog.String("phase", pass.phase.String()), slog.Int("quota", pass.quota))
		for _, id := range ids {
			for range pass.quota {
				if d.game.Status().TurnsRemaining == 0 {
					break
				}
				question, err := d.nextQuestion(ctx, id, covered[id], &memory)
				if err != nil {
					return report, err
				}
				if question == "" {
					report.Skipped++
					d.observer(Event{Kind: EventSkipped, Phase: pass.phase, SuspectID: id})
					break
				}
				d.game.SwitchSuspect(id)
				answer, err := d.game.Interrogate(ctx, question)
				if err != nil {
					return report, errors.Wrap(err, "interrogate", slog.String("suspect_id", id))
				}
				memory.Remember(id, question)
				covered[id] = append(covered[id], question)
				report.Asked++
				d.observer(Event{Kind: EventAsked, Phase: pass.phase, SuspectID: id, Question: question, Answer: answer})
			}
		}
	}

	d.observer(Event{Kind: EventPhase, Phase: PhaseDeduction})
	accusation, err := d.game.DeduceAccusation(ctx)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "aborting before accusation", errors.SlogError(err))
		return report, errors.Wrap(errors.Join(ErrDeductionFailed, err), "deduce accusation")
	}
	report.Accusation = accusation
	d.observer(Event{Kind: EventDeduced, Phase: PhaseDeduction, Accusation: accusation})

	d.observer(Event{Kind: EventPhase, Phase: PhaseAccusation})
	verdict, err := d.game.MakeAccusation(ctx, accusation.SuspectID, accusation.Weapon, accusation.Motive)
	if err != nil {
		return report, errors.Wrap(err, "make accusation")
	}
	report.Verdict = verdict
	d.observer(Event{Kind: EventVerdict, Phase: PhaseAccusation, Verdict: verdict})
	d.logger.LogAttrs(ctx, slog.LevelInfo, "autopilot finished",
		slog.Int("asked", report.Asked), slog.Int("skipped", report.Skipped), slog.Int("score", verdict.Score))
	return report, nil
}

func (d *Driver) withSession(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("session_id", d.game.SessionID()))
}

// nextQuestion plans a question that is not a near duplicate of earlier ones. It retries once with the rejected
// question marked as covered and returns "" when the retry is rejected too.
func (d *Driver) nextQuestion(ctx context.Context, id string, covered []string, memory *dedup.Memory) (string, error) {
	question, err := d.game.PlanNextQuestion(ctx, id, covered)
	if err != nil {
		return "", errors.Wrap(err, "plan question")
	}
	if question != "" && !memory.Seen(id, question, d.cfg.DedupThreshold) {
		return question, nil
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "reframing duplicate question",
		slog.String("suspect_id", id), slog.String("question", question))
	reframed := append(append([]string(nil), covered...), ReframePrefix+question)
	retry, err := d.game.PlanNextQuestion(ctx, id, reframed)
	if err != nil {
		return "", errors.Wrap(err, "replan question")
	}
	if retry == "" || memory.Seen(id, retry, d.cfg.DedupThreshold) {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "no question asked this cycle",
			slog.String("suspect_id", id), slog.String("question", retry))
		return "", nil
	}
	return retry, nil
}
