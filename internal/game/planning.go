package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/history"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
)

// PlanNextQuestion asks the planner for the best next question to suspect id.
//
// covered lists topics already explored with the suspect. The returned question ends in a question mark, or is
// empty when the planner produced nothing.
func (g *Game) PlanNextQuestion(ctx context.Context, id string, covered []string) (string, error) {
	ctx = g.withSession(ctx)
	profile, ok := g.caseFile.Suspect(id)
	if !ok {
		return "", errors.Wrap(ErrUnknownSuspect, "plan question", slog.String("suspect_id", id))
	}

	own := g.log.Exchanges(id)
	in := prompts.PlanningInput{
		Profile: profile,
		Own:     history.Tail(own, g.cfg.PlannerHistory),
		Covered: covered,
		Intel:   g.intel(id),
		Gaps:    EvidenceGaps(g.caseFile.Evidence(), g.caseFile.Victim(), own),
	}
	reply, err := g.responders.Planner.Respond(ctx, prompts.Planning(in))
	if err != nil {
		return "", errors.Wrap(err, "planner respond", slog.String("suspect_id", id))
	}

	question := normalizeQuestion(reply)
	g.logger.LogAttrs(ctx, slog.LevelInfo, "planned question",
		slog.String("suspect_id", id), slog.String("question", question), slog.Int("covered", len(covered)))
	return question, nil
}

// intel collects the recent answers of every other suspect questioned so far.
func (g *Game) intel(id string) []prompts.Intel {
	var out []prompts.Intel
	for _, s := range g.caseFile.Suspects() {
		exchanges := g.log.Exchanges(s.ID)
		if s.ID == id || len(exchanges) == 0 {
			continue
		}
		recent := history.Tail(exchanges, g.cfg.IntelWindow)
		truncated := make([]models.Exchange, len(recent))
		for i, e := range recent {
			truncated[i] = models.Exchange{Question: e.Question, Answer: history.Truncate(e.Answer, g.cfg.IntelRunes, "...")}
		}
		out = append(out, prompts.Intel{Name: s.Name, Exchanges: truncated})
	}
	return out
}

func normalizeQuestion(reply string) string {
	question := strings.Trim(strings.TrimSpace(reply), `"'`)
	question = strings.TrimSpace(question)
	if question != "" {
		question = strings.TrimRight(question, ".!?") + "?"
	}
	return question
}

// EvidenceGaps lists investigation topics none of the answers touch on yet.
//
// A topic is covered when any of its keywords occurs in any answer. Topics without keywords are never reported.
func EvidenceGaps(evidence casefile.Evidence, victim models.Victim, exchanges []models.Exchange) []string {
	answers := make([]string, len(exchanges))
	for i, e := range exchanges {
		answers[i] = e.Answer
	}
	all := strings.ToLower(strings.Join(answers, " "))
	mentioned := func(keywords []string) bool {
		if len(keywords) == 0 {
			return true
		}
		for _, k := range keywords {
			if strings.Contains(all, strings.ToLower(k)) {
				return true
			}
		}
		return false
	}

	var gaps []string
	if !mentioned(evidence.Weapon) {
		gaps = append(gaps, "Weapon not confirmed - probe for physical objects seen that night.")
	}
	if !mentioned(evidence.Motive) {
		gaps = append(gaps, "Motive unclear - explore financial disputes or personal grievances.")
	}
	if !mentioned(evidence.Location) {
		gaps = append(gaps, fmt.Sprintf("Crime scene (%s) not mentioned - ask if they were near it.", victim.Location))
	}
	if !mentioned(evidence.Time) {
		gaps = append(gaps, fmt.Sprintf("Precise timeline around %s not established.", victim.TimeOfDeath))
	}
	if len(gaps) == 0 {
		gaps = append(gaps, "All major gaps covered - probe for contradictions or emotional slips.")
	}
	return gaps
}
