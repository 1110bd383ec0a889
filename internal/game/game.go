// Package game sequences the interrogation of suspects, the deduction of an accusation and its evaluation.
//
// A Game is not safe for concurrent use. Callers hosting several players keep one Game per player and serialize
// calls to it.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/deduction"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/history"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
	"github.com/myrjola/whodunit/internal/safety"
	"github.com/myrjola/whodunit/internal/scoring"
	"github.com/myrjola/whodunit/internal/session"
)

const (
	TimeOutMessage    = "(The detective has run out of time.)"
	CaseClosedMessage = "(The case is closed. Start a new investigation to continue.)"
)

var (
	ErrAccusationMade   = errors.NewSentinel("accusation already made")
	ErrUnknownSuspect   = errors.NewSentinel("unknown suspect")
	ErrEmptyQuestion    = errors.NewSentinel("empty question")
	ErrMissingResponder = errors.NewSentinel("missing responder")
)

// Responder produces free text for a prompt. Every model role is a separate Responder.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Responders are the model roles of a game.
type Responders struct {
	// Suspects maps suspect id to the voice of that suspect.
	Suspects  map[string]Responder
	Reviser   Responder
	Planner   Responder
	Deducer   Responder
	Evaluator Responder
}

// Journal persists the course of a game. Journal failures are logged and never change the game.
type Journal interface {
	StartSession(ctx context.Context, sessionID, caseID string) error
	RecordExchange(ctx context.Context, sessionID, suspectID string, order int, exchange models.Exchange, revised bool) error
	RecordVerdict(ctx context.Context, sessionID string, verdict models.Verdict) error
}

// Option configures a Game.
type Option func(*Game)

// WithJournal persists the game to j.
func WithJournal(j Journal) Option {
	return func(g *Game) {
		g.journal = j
	}
}

// WithSessionID overrides the generated session id of the first session.
func WithSessionID(id string) Option {
	return func(g *Game) {
		g.sessionID = id
	}
}

// Game is the turn orchestrator of one player.
type Game struct {
	caseFile   *casefile.Case
	responders Responders
	cfg        config.Game
	rules      scoring.Rules
	logger     *slog.Logger
	journal    Journal
	history    history.Builder
	gate       safety.Gate
	parser     deduction.Parser

	sessionID      string
	journalStarted bool
	state          *session.State
	log            *session.Log
	current        string
	phase          Phase
	verdict        *models.Verdict
}

// New creates a game for the case. Every suspect needs a responder, and so does every other role.
func New(c *casefile.Case, responders Responders, cfg config.Config, logger *slog.Logger, opts ...Option) (*Game, error) {
	for _, id := range c.SuspectIDs() {
		if responders.Suspects[id] == nil {
			return nil, errors.Wrap(ErrMissingResponder, "check suspect responders", slog.String("suspect_id", id))
		}
	}
	roles := []struct {
		name      string
		responder Responder
	}{
		{"reviser", responders.Reviser},
		{"planner", responders.Planner},
		{"deducer", responders.Deducer},
		{"evaluator", responders.Evaluator},
	}
	for _, role := range roles {
		if role.responder == nil {
			return nil, errors.Wrap(ErrMissingResponder, "check role responders", slog.String("role", role.name))
		}
	}

	logger = logger.With(slog.String("source", "game"), slog.String("case_id", c.ID()))
	g := &Game{
		caseFile:   c,
		responders: responders,
		cfg:        cfg.Game,
		rules:      cfg.Scoring.Rules(),
		logger:     logger,
		history: history.Builder{
			CompressAfter: cfg.Game.CompressAfter,
			EarlyWindow:   cfg.Game.EarlyWindow,
			RecentWindow:  cfg.Game.RecentWindow,
			SummaryRunes:  cfg.Game.SummaryRunes,
		},
		gate: safety.Gate{
			Triggers: c.Triggers(),
			Reviser:  responders.Reviser,
			Logger:   logger,
		},
		parser: deduction.Parser{
			Suspects: c.SuspectIDs(),
			Weapons:  c.Weapons(),
			Motives:  c.Motives(),
		},
	}
	g.reset()
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Game) reset() {
	g.sessionID = uuid.NewString()
	g.journalStarted = false
	g.state = session.NewState(g.cfg.MaxTurns)
	g.log = session.NewLog()
	g.current = g.caseFile.SuspectIDs()[0]
	g.phase = PhaseIdle
	g.verdict = nil
}

// Reset starts a new session: counters, logs and results are cleared and the first suspect becomes active.
func (g *Game) Reset() {
	previous := g.sessionID
	g.reset()
	g.logger.LogAttrs(context.Background(), slog.LevelInfo, "game reset",
		slog.String("previous_session_id", previous), slog.String("session_id", g.sessionID))
}

func (g *Game) withSession(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("session_id", g.sessionID))
}

// SessionID identifies the current session.
func (g *Game) SessionID() string {
	return g.sessionID
}

// Case returns the case being investigated.
func (g *Game) Case() *casefile.Case {
	return g.caseFile
}

// Phase returns where the game is in its lifecycle.
func (g *Game) Phase() Phase {
	return g.phase
}

// Suspects returns the suspects in registry order.
func (g *Game) Suspects() []models.EntityProfile {
	return g.caseFile.Suspects()
}

// CurrentSuspect returns the suspect being questioned.
func (g *Game) CurrentSuspect() models.EntityProfile {
	p, _ := g.caseFile.Suspect(g.current)
	return p
}

// SwitchSuspect makes id the active suspect. It returns false for unknown ids.
func (g *Game) SwitchSuspect(id string) bool {
	if _, ok := g.caseFile.Suspect(id); !ok {
		g.logger.LogAttrs(context.Background(), slog.LevelWarn, "switch to unknown suspect",
			slog.String("suspect_id", id), slog.String("session_id", g.sessionID))
		return false
	}
	g.current = id
	return true
}

// Exchanges returns the conversation with suspect id.
func (g *Game) Exchanges(id string) []models.Exchange {
	return g.log.Exchanges(id)
}

// Verdict returns the evaluated accusation once one has been made.
func (g *Game) Verdict() (models.Verdict, bool) {
	if g.verdict == nil {
		return models.Verdict{}, false
	}
	return *g.verdict, true
}

// SuspectStatus is the progress with one suspect.
type SuspectStatus struct {
	ID    string
	Name  string
	Turns int
}

// Status summarizes the progress of the game.
type Status struct {
	SessionID      string
	Phase          Phase
	CurrentSuspect string
	TotalTurns     int
	MaxTurns       int
	TurnsRemaining int
	Suspects       []SuspectStatus
	Engaged        []string
	AccusationMade bool
	GameWon        bool
	FinalScore     int
}

// Status reports turn counts, engaged suspects and results.
func (g *Game) Status() Status {
	suspects := g.caseFile.Suspects()
	perSuspect := make([]SuspectStatus, len(suspects))
	for i, s := range suspects {
		perSuspect[i] = SuspectStatus{ID: s.ID, Name: s.Name, Turns: g.state.TurnsFor(s.ID)}
	}
	return Status{
		SessionID:      g.sessionID,
		Phase:          g.phase,
		CurrentSuspect: g.current,
		TotalTurns:     g.state.TotalTurns(),
		MaxTurns:       g.state.MaxTurns(),
		TurnsRemaining: g.state.TurnsRemaining(),
		Suspects:       perSuspect,
		Engaged:        g.state.Engaged(),
		AccusationMade: g.state.AccusationMade(),
		GameWon:        g.state.GameWon(),
		FinalScore:     g.state.FinalScore(),
	}
}

// Interrogate asks the active suspect a question and returns the answer that is safe to show.
//
// Once the turn cap is reached TimeOutMessage is returned and nothing changes. After an accusation
// CaseClosedMessage is returned. A responder error leaves the game untouched.
func (g *Game) Interrogate(ctx context.Context, question string) (string, error) {
	ctx = g.withSession(ctx)
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if g.state.AccusationMade() {
		return CaseClosedMessage, nil
	}
	if g.state.OutOfTurns() {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "interrogation past turn cap",
			slog.Int("total_turns", g.state.TotalTurns()), slog.Int("max_turns", g.state.MaxTurns()))
		return TimeOutMessage, nil
	}

	profile := g.CurrentSuspect()
	previous := g.phase
	g.phase = PhaseQuestioning
	g.logger.LogAttrs(ctx, slog.LevelInfo, "interrogating",
		slog.String("suspect_id", profile.ID),
		slog.Int("turn", g.state.TotalTurns()+1),
		slog.Int("prior_exchanges", g.log.Len(profile.ID)))

	hist := g.history.Build(profile.Name, g.log.Exchanges(profile.ID), g.state.TotalTurns())
	raw, err := g.responders.Suspects[profile.ID].Respond(ctx, prompts.SuspectTurn(hist, question))
	if err != nil {
		g.phase = previous
		return "", errors.Wrap(err, "suspect respond", slog.String("suspect_id", profile.ID))
	}
	outcome, err := g.gate.Review(ctx, question, profile, g.caseFile.Truth().Redlines, raw)
	if err != nil {
		g.phase = previous
		return "", errors.Wrap(err, "safety review", slog.String("suspect_id", profile.ID))
	}

	exchange := models.Exchange{Question: question, Answer: outcome.Answer}
	g.log.Append(profile.ID, exchange)
	g.state.AdvanceTurn(profile.ID)
	g.phase = PhaseLogged
	if g.state.OutOfTurns() {
		g.phase = PhaseAwaitingAccusation
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "turn complete",
		slog.String("suspect_id", profile.ID),
		slog.Int("total_turns", g.state.TotalTurns()),
		slog.Bool("revised", outcome.Revised))
	g.record(ctx, func(j Journal) error {
		return j.RecordExchange(ctx, g.sessionID, profile.ID, g.log.Len(profile.ID), exchange, outcome.Revised)
	})
	return outcome.Answer, nil
}

// record passes an event to the journal. Failures are logged only.
func (g *Game) record(ctx context.Context, fn func(Journal) error) {
	if g.journal == nil {
		return
	}
	if !g.journalStarted {
		if err := g.journal.StartSession(ctx, g.sessionID, g.caseFile.ID()); err != nil {
			g.logger.LogAttrs(ctx, slog.LevelError, "start journal session", errors.SlogError(err))
			return
		}
		g.journalStarted = true
	}
	if err := fn(g.journal); err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "write journal", errors.SlogError(err))
	}
}

// Transcript renders every conversation in registry order for the deducer.
func (g *Game) Transcript() string {
	var sb strings.Builder
	for _, s := range g.caseFile.Suspects() {
		exchanges := g.log.Exchanges(s.ID)
		if len(exchanges) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n\n=== Interrogation: %s ===", s.Name)
		for i, e := range exchanges {
			fmt.Fprintf(&sb, "\nQ%d: %s\nA%d: %s", i+1, e.Question, i+1, e.Answer)
		}
	}
	if sb.Len() == 0 {
		return "No interrogations conducted."
	}
	return strings.TrimPrefix(sb.String(), "\n\n")
}
