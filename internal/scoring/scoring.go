// Package scoring turns the correctness of an accusation and the number of turns used into a score in [0, 100].
package scoring

// Rules are the point values and efficiency tiers.
type Rules struct {
	SuspectPoints int
	WeaponPoints  int
	MotivePoints  int

	// FastTurns or fewer earn FastBonus, otherwise MediumTurns or fewer earn MediumBonus.
	FastTurns   int
	FastBonus   int
	MediumTurns int
	MediumBonus int

	// Every turn past PenaltyStart costs PenaltyPerTurn, at most MaxPenalty in total.
	PenaltyStart   int
	PenaltyPerTurn int
	MaxPenalty     int
}

// DefaultRules award 40/30/30 points with a +10 bonus up to 10 turns, +5 up to 15 turns and a penalty of 2 per turn
// past 25 turns capped at 20.
func DefaultRules() Rules {
	return Rules{
		SuspectPoints:  40,
		WeaponPoints:   30,
		MotivePoints:   30,
		FastTurns:      10,
		FastBonus:      10,
		MediumTurns:    15,
		MediumBonus:    5,
		PenaltyStart:   25,
		PenaltyPerTurn: 2,
		MaxPenalty:     20,
	}
}

// Score computes the final score. Exactly one efficiency tier applies.
func Score(rules Rules, suspect, weapon, motive bool, totalTurns int) int {
	score := 0
	if suspect {
		score += rules.SuspectPoints
	}
	if weapon {
		score += rules.WeaponPoints
	}
	if motive {
		score += rules.MotivePoints
	}

	switch {
	case totalTurns <= rules.FastTurns:
		score += rules.FastBonus
	case totalTurns <= rules.MediumTurns:
		score += rules.MediumBonus
	case totalTurns > rules.PenaltyStart:
		score -= min(rules.MaxPenalty, (totalTurns-rules.PenaltyStart)*rules.PenaltyPerTurn)
	}

	return max(0, min(100, score))
}
