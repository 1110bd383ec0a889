package game

// Phase is the lifecycle state of a game.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseQuestioning
	PhaseLogged
	PhaseAwaitingAccusation
	PhaseEvaluated
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseQuestioning:
		return "questioning"
	case PhaseLogged:
		return "logged"
	case PhaseAwaitingAccusation:
		return "awaiting accusation"
	case PhaseEvaluated:
		return "evaluated"
	case PhaseTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
