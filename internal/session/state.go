// Package session holds the mutable state of one game: turn counters, result flags and the per-suspect
// conversation log.
package session

import (
	"slices"
	"sort"

	"github.com/myrjola/whodunit/internal/models"
)

// State counts turns and records the outcome of a game.
//
// The invariant TotalTurns() == sum of TurnsFor over all entities holds because AdvanceTurn is the only method
// that touches the counters.
type State struct {
	maxTurns       int
	totalTurns     int
	turns          map[string]int
	accusationMade bool
	gameWon        bool
	finalScore     int
}

// NewState creates a state for the given turn cap.
func NewState(maxTurns int) *State {
	return &State{
		maxTurns: maxTurns,
		turns:    make(map[string]int),
	}
}

// AdvanceTurn records one exchange with entityID.
func (s *State) AdvanceTurn(entityID string) {
	s.totalTurns++
	s.turns[entityID]++
}

// Finalize records the outcome of the accusation.
func (s *State) Finalize(won bool, score int) {
	s.accusationMade = true
	s.gameWon = won
	s.finalScore = score
}

// MaxTurns is the turn cap of the game.
func (s *State) MaxTurns() int {
	return s.maxTurns
}

// TotalTurns is the number of exchanges across all entities.
func (s *State) TotalTurns() int {
	return s.totalTurns
}

func (s *State) AccusationMade() bool {
	return s.accusationMade
}

func (s *State) GameWon() bool {
	return s.gameWon
}

func (s *State) FinalScore() int {
	return s.finalScore
}

// TurnsFor returns the number of exchanges with entityID.
func (s *State) TurnsFor(entityID string) int {
	return s.turns[entityID]
}

// TurnsRemaining is never negative.
func (s *State) TurnsRemaining() int {
	return max(0, s.maxTurns-s.totalTurns)
}

// OutOfTurns reports whether the turn cap has been reached.
func (s *State) OutOfTurns() bool {
	return s.totalTurns >= s.maxTurns
}

// Engaged returns the sorted ids of entities questioned at least once.
func (s *State) Engaged() []string {
	ids := make([]string, 0, len(s.turns))
	for id, n := range s.turns {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Log is the per-entity conversation history. Exchanges are only ever appended.
type Log struct {
	exchanges map[string][]models.Exchange
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{exchanges: make(map[string][]models.Exchange)}
}

// Append adds an exchange to the end of entityID's history.
func (l *Log) Append(entityID string, exchange models.Exchange) {
	l.exchanges[entityID] = append(l.exchanges[entityID], exchange)
}

// Exchanges returns a copy of entityID's history in chronological order.
func (l *Log) Exchanges(entityID string) []models.Exchange {
	return slices.Clone(l.exchanges[entityID])
}

// Len returns the number of exchanges with entityID.
func (l *Log) Len(entityID string) int {
	return len(l.exchanges[entityID])
}
