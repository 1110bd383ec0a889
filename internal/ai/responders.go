package ai

import (
	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/prompts"
)

// GameResponders creates one responder per suspect voice on the suspect model and the utility roles on the utility
// model.
func (c *Client) GameResponders(cf *casefile.Case, models config.Models) game.Responders {
	suspects := make(map[string]game.Responder)
	for _, profile := range cf.Suspects() {
		suspects[profile.ID] = c.NewResponder(models.SuspectModel, prompts.SuspectInstructions(cf, profile))
	}
	return game.Responders{
		Suspects:  suspects,
		Reviser:   c.NewResponder(models.UtilityModel, prompts.ReviserInstructions()),
		Planner:   c.NewResponder(models.UtilityModel, prompts.PlannerInstructions(cf)),
		Deducer:   c.NewResponder(models.UtilityModel, prompts.DeducerInstructions(cf)),
		Evaluator: c.NewResponder(models.UtilityModel, prompts.EvaluatorInstructions()),
	}
}
