// Package prompts renders the instructions and per-call prompts of every model role in a game.
package prompts

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
)

//go:embed prompts.tmpl
var source string

var templates = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"upper":   strings.ToUpper,
	"join":    strings.Join,
	"bullets": bullets,
}).Parse(source))

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "  - " + item
	}
	return strings.Join(lines, "\n")
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", errors.Wrap(err, "execute prompt template")
	}
	return sb.String(), nil
}

func mustRender(name string, data any) string {
	s, err := render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// SuspectInstructions are the system instructions of a suspect voice.
func SuspectInstructions(c *casefile.Case, profile models.EntityProfile) string {
	return mustRender("suspect-system", struct {
		Title   string
		Profile models.EntityProfile
	}{c.Title(), profile})
}

// SuspectTurn prepends the rendered history to the detective's question.
func SuspectTurn(history, question string) string {
	return mustRender("suspect-turn", struct {
		History  string
		Question string
	}{history, question})
}

// ReviserInstructions are the system instructions of the safety reviser.
func ReviserInstructions() string {
	return mustRender("reviser-system", nil)
}

// Revision asks the reviser to make raw safe to show.
func Revision(question string, profile models.EntityProfile, caseRedlines []string, raw string) string {
	return mustRender("revision", struct {
		Question     string
		Profile      models.EntityProfile
		CaseRedlines []string
		Raw          string
	}{question, profile, caseRedlines, raw})
}

// PlannerInstructions are the system instructions of the question planner.
func PlannerInstructions(c *casefile.Case) string {
	return mustRender("planner-system", c)
}

// Intel is what another suspect said recently.
type Intel struct {
	Name      string
	Exchanges []models.Exchange
}

// PlanningInput is everything the planner sees about one suspect.
type PlanningInput struct {
	Profile models.EntityProfile
	Own     []models.Exchange
	Covered []string
	Intel   []Intel
	Gaps    []string
}

// Planning asks the planner for the next question.
func Planning(in PlanningInput) string {
	return mustRender("planning", in)
}

// DeducerInstructions are the system instructions of the deducer.
func DeducerInstructions(c *casefile.Case) string {
	return mustRender("deducer-system", c)
}

// Deduction hands the full transcript to the deducer.
func Deduction(transcript string) string {
	return mustRender("deduction", transcript)
}

// EvaluatorInstructions are the system instructions of the judge narrating the verdict.
func EvaluatorInstructions() string {
	return mustRender("evaluator-system", nil)
}

// Highlight is the tail of one suspect's interrogation.
type Highlight struct {
	Name      string
	Total     int
	Exchanges []models.Exchange
}

// EvaluationInput is everything the judge sees.
type EvaluationInput struct {
	Accusation     models.Accusation
	AccusedName    string
	Truth          models.GroundTruth
	CulpritName    string
	CorrectSuspect bool
	CorrectWeapon  bool
	CorrectMotive  bool
	Score          int
	TotalTurns     int
	Interviewed    int
	Profiles       []models.EntityProfile
	Highlights     []Highlight
}

// Evaluation asks the judge for the verdict narrative.
func Evaluation(in EvaluationInput) string {
	return mustRender("evaluation", in)
}

// Briefing is the case overview shown to the player.
func Briefing(c *casefile.Case) string {
	return mustRender("briefing", c)
}
