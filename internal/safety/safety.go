// Package safety reviews suspect answers for leaks of the hidden truth before they are shown.
//
// The review is gated by a cheap keyword scan: only answers containing a trigger keyword are sent to the reviser.
// Keyword absence is a heuristic and not a proof that the answer is safe.
package safety

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
)

// Deflection replaces a revision that came back empty.
const Deflection = "I have nothing more to say about that, Detective."

// Reviser rewrites a leaking answer.
type Reviser interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Gate decides whether an answer needs revision.
type Gate struct {
	// Triggers are lower-case keyword fragments.
	Triggers []string
	Reviser  Reviser
	Logger   *slog.Logger
}

// Outcome is the answer that may be shown to the detective.
type Outcome struct {
	Answer  string
	Revised bool
	// Trigger is the first keyword that matched.
	Trigger string
}

// Triggered returns the first trigger keyword contained in raw.
func (g Gate) Triggered(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, trigger := range g.Triggers {
		if trigger != "" && strings.Contains(lower, trigger) {
			return trigger, true
		}
	}
	return "", false
}

// Review returns raw unchanged (trimmed) unless it contains a trigger keyword, in which case the reviser's output
// is returned instead.
func (g Gate) Review(
	ctx context.Context,
	question string,
	profile models.EntityProfile,
	caseRedlines []string,
	raw string,
) (Outcome, error) {
	trigger, ok := g.Triggered(raw)
	if !ok {
		return Outcome{Answer: strings.TrimSpace(raw)}, nil
	}

	if g.Logger != nil {
		g.Logger.LogAttrs(ctx, slog.LevelInfo, "safety review triggered",
			slog.String("suspect_id", profile.ID), slog.String("trigger", trigger))
	}

	revised, err := g.Reviser.Respond(ctx, prompts.Revision(question, profile, caseRedlines, raw))
	if err != nil {
		return Outcome{}, errors.Wrap(err, "revise answer", slog.String("suspect_id", profile.ID))
	}
	answer := strings.TrimSpace(revised)
	if answer == "" {
		answer = Deflection
	}
	return Outcome{Answer: answer, Revised: true, Trigger: trigger}, nil
}
