package game

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/history"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
	"github.com/myrjola/whodunit/internal/scoring"
)

// DeduceAccusation asks the deducer to solve the case from the full transcript.
//
// Any output that is not a fully valid accusation is an error wrapping deduction.ErrNoDeduction. Callers must not
// substitute a guess.
func (g *Game) DeduceAccusation(ctx context.Context) (models.Accusation, error) {
	ctx = g.withSession(ctx)
	transcript := g.Transcript()
	g.logger.LogAttrs(ctx, slog.LevelInfo, "deducing accusation", slog.Int("transcript_bytes", len(transcript)))

	raw, err := g.responders.Deducer.Respond(ctx, prompts.Deduction(transcript))
	if err != nil {
		return models.Accusation{}, errors.Wrap(err, "deducer respond")
	}
	accusation, err := g.parser.Parse(raw)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "deduction rejected",
			errors.SlogError(err), slog.String("raw", history.Truncate(raw, 300, "...")))
		return models.Accusation{}, errors.Wrap(err, "parse deduction")
	}
	if !g.state.AccusationMade() {
		g.phase = PhaseAwaitingAccusation
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "deduced accusation",
		slog.String("suspect_id", accusation.SuspectID),
		slog.String("weapon", accusation.Weapon),
		slog.String("motive", accusation.Motive))
	return accusation, nil
}

// MakeAccusation evaluates the accusation against the hidden truth and ends the game.
//
// Only one accusation is allowed per session; later calls return ErrAccusationMade. An evaluator error leaves the
// game untouched so the accusation can be retried.
func (g *Game) MakeAccusation(ctx context.Context, suspectID, weapon, motive string) (models.Verdict, error) {
	ctx = g.withSession(ctx)
	if g.state.AccusationMade() {
		return models.Verdict{}, ErrAccusationMade
	}

	truth := g.caseFile.Truth()
	accusation := models.Accusation{
		SuspectID: strings.TrimSpace(suspectID),
		Weapon:    strings.TrimSpace(weapon),
		Motive:    strings.TrimSpace(motive),
	}
	correctSuspect := strings.EqualFold(accusation.SuspectID, truth.CulpritID)
	correctWeapon := strings.EqualFold(accusation.Weapon, truth.Weapon)
	correctMotive := strings.EqualFold(accusation.Motive, truth.Motive)
	score := scoring.Score(g.rules, correctSuspect, correctWeapon, correctMotive, g.state.TotalTurns())

	g.logger.LogAttrs(ctx, slog.LevelInfo, "accusation received",
		slog.String("suspect_id", accusation.SuspectID),
		slog.String("weapon", accusation.Weapon),
		slog.String("motive", accusation.Motive),
		slog.Bool("correct_suspect", correctSuspect),
		slog.Bool("correct_weapon", correctWeapon),
		slog.Bool("correct_motive", correctMotive),
		slog.Int("score", score))

	accusedName := "Unknown"
	for _, s := range g.caseFile.Suspects() {
		if strings.EqualFold(s.ID, accusation.SuspectID) {
			accusedName = s.Name
		}
	}
	culprit, _ := g.caseFile.Suspect(truth.CulpritID)

	previous := g.phase
	g.phase = PhaseEvaluated
	narrative, err := g.responders.Evaluator.Respond(ctx, prompts.Evaluation(prompts.EvaluationInput{
		Accusation:     accusation,
		AccusedName:    accusedName,
		Truth:          truth,
		CulpritName:    culprit.Name,
		CorrectSuspect: correctSuspect,
		CorrectWeapon:  correctWeapon,
		CorrectMotive:  correctMotive,
		Score:          score,
		TotalTurns:     g.state.TotalTurns(),
		Interviewed:    len(g.state.Engaged()),
		Profiles:       g.caseFile.Suspects(),
		Highlights:     g.highlights(),
	}))
	if err != nil {
		g.phase = previous
		return models.Verdict{}, errors.Wrap(err, "evaluator respond")
	}

	verdict := models.Verdict{
		Accusation:     accusation,
		AccusedName:    accusedName,
		CorrectSuspect: correctSuspect,
		CorrectWeapon:  correctWeapon,
		CorrectMotive:  correctMotive,
		Score:          score,
		TotalTurns:     g.state.TotalTurns(),
		Narrative:      strings.TrimSpace(narrative),
	}
	g.state.Finalize(correctSuspect, score)
	g.verdict = &verdict
	g.phase = PhaseTerminal

	g.logger.LogAttrs(ctx, slog.LevelInfo, "accusation evaluated",
		slog.Bool("game_won", verdict.Won()), slog.Int("score", score))
	g.record(ctx, func(j Journal) error {
		return j.RecordVerdict(ctx, g.sessionID, verdict)
	})
	return verdict, nil
}

func (g *Game) highlights() []prompts.Highlight {
	var out []prompts.Highlight
	for _, s := range g.caseFile.Suspects() {
		exchanges := g.log.Exchanges(s.ID)
		if len(exchanges) == 0 {
			continue
		}
		recent := history.Tail(exchanges, g.cfg.Highlights)
		truncated := make([]models.Exchange, len(recent))
		for i, e := range recent {
			truncated[i] = models.Exchange{
				Question: e.Question,
				Answer:   history.Truncate(e.Answer, g.cfg.HighlightRunes, "..."),
			}
		}
		out = append(out, prompts.Highlight{Name: s.Name, Total: len(exchanges), Exchanges: truncated})
	}
	return out
}
