// Package gametest provides deterministic responders for testing code that drives a game.
package gametest

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// DefaultAnswer contains no safety trigger of the default case.
const DefaultAnswer = "I was reading in my room all evening."

// Stub replies with Replies in order and then with Default. A non-nil Err is returned instead of a reply.
type Stub struct {
	mu      sync.Mutex
	Replies []string
	Default string
	Err     error
	prompts []string
}

// Respond implements game.Responder.
func (s *Stub) Respond(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) > 0 {
		reply := s.Replies[0]
		s.Replies = s.Replies[1:]
		return reply, nil
	}
	return s.Default, nil
}

// Prompts returns every prompt received so far.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Calls returns the number of prompts received.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Stubs holds one stub per role.
type Stubs struct {
	Suspects  map[string]*Stub
	Reviser   *Stub
	Planner   *Stub
	Deducer   *Stub
	Evaluator *Stub
}

// CorrectDeduction solves the default case.
const CorrectDeduction = "```json\n" + `{"suspect_id": "s1", "weapon": "brass candlestick", "motive": "inheritance", ` +
	`"reasoning": "Lydia's alibi contradicts Eleanor's sighting."}` + "\n```"

// NewStubs creates stubs for every role of c.
func NewStubs(c *casefile.Case) *Stubs {
	suspects := make(map[string]*Stub)
	for _, id := range c.SuspectIDs() {
		suspects[id] = &Stub{Default: DefaultAnswer}
	}
	return &Stubs{
		Suspects:  suspects,
		Reviser:   &Stub{Default: "I would rather not discuss that."},
		Planner:   &Stub{Default: "Where were you at the time of the murder?"},
		Deducer:   &Stub{Default: CorrectDeduction},
		Evaluator: &Stub{Default: "CASE RESOLUTION"},
	}
}

// Responders adapts the stubs to game.Responders.
func (s *Stubs) Responders() game.Responders {
	suspects := make(map[string]game.Responder, len(s.Suspects))
	for id, stub := range s.Suspects {
		suspects[id] = stub
	}
	return game.Responders{
		Suspects:  suspects,
		Reviser:   s.Reviser,
		Planner:   s.Planner,
		Deducer:   s.Deducer,
		Evaluator: s.Evaluator,
	}
}

// NewGame creates a game of the default case backed by stubs.
func NewGame(t *testing.T, cfg config.Config, opts ...game.Option) (*game.Game, *Stubs) {
	t.Helper()
	c, err := casefile.Default()
	require.NoError(t, err)
	stubs := NewStubs(c)
	g, err := game.New(c, stubs.Responders(), cfg, testhelpers.NewLogger(io.Discard), opts...)
	require.NoError(t, err)
	return g, stubs
}
