package main

import (
	"context"
	"sync"
	"time"

	"github.com/myrjola/whodunit/internal/game"
)

// player owns the game of one browser session. Hold mu while using the game.
type player struct {
	mu       sync.Mutex
	game     *game.Game
	lastUsed time.Time
}

// registry keeps one game per browser session.
type registry struct {
	mu      sync.Mutex
	players map[string]*player
	now     func() time.Time
}

func newRegistry() *registry {
	return &registry{
		players: make(map[string]*player),
		now:     time.Now,
	}
}

// acquire locks and returns the player with id, creating its game with newGame if needed. Call release when done.
func (r *registry) acquire(id string, newGame func() (*game.Game, error)) (*player, error) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		p = &player{}
		r.players[id] = p
	}
	p.lastUsed = r.now()
	r.mu.Unlock()

	p.mu.Lock()
	if p.game == nil {
		g, err := newGame()
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		p.game = g
	}
	return p, nil
}

func (p *player) release() {
	p.mu.Unlock()
}

// evict forgets players idle for longer than lifetime and returns how many were removed.
func (r *registry) evict(lifetime time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-lifetime)
	evicted := 0
	for id, p := range r.players {
		if p.lastUsed.Before(cutoff) {
			delete(r.players, id)
			evicted++
		}
	}
	return evicted
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// runEviction evicts idle players periodically until ctx is cancelled.
func (r *registry) runEviction(ctx context.Context, lifetime time.Duration) error {
	ticker := time.NewTicker(lifetime / 4) //nolint:mnd // a few sweeps per lifetime.
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.evict(lifetime)
		}
	}
}
