package play

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/myrjola/whodunit/internal/config"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/game/gametest"
	"github.com/myrjola/whodunit/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, cfg config.Config, input ...string) (string, *gametest.Stubs) {
	t.Helper()
	g, stubs := gametest.NewGame(t, cfg)
	var out bytes.Buffer
	session := &Session{
		Game:   g,
		Config: cfg.Game,
		Logger: testhelpers.NewLogger(io.Discard),
		In:     strings.NewReader(strings.Join(input, "\n") + "\n"),
		Out:    &out,
	}
	require.NoError(t, session.Run(context.Background()))
	return out.String(), stubs
}

func TestSession_Run(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		contains []string
		absent   []string
	}{
		{
			name:     "banner and prompt",
			input:    []string{"/quit"},
			contains: []string{"CASE OVERVIEW:", "[0/30] [You → Lydia Blackwood]:", "Case file closed."},
		},
		{
			name:     "question",
			input:    []string{"Where were you?", "/quit"},
			contains: []string{"Lydia Blackwood: " + gametest.DefaultAnswer, "[1/30] [You → Lydia Blackwood]:"},
		},
		{
			name:     "switch suspect",
			input:    []string{"/suspect s2", "/suspect nobody", "/quit"},
			contains: []string{"Now questioning Dr. Marcus Vale.", `Unknown suspect "nobody".`, "[You → Dr. Marcus Vale]"},
		},
		{
			name:     "list suspects",
			input:    []string{"Hello?", "/suspects", "/quit"},
			contains: []string{"* s1: Lydia Blackwood (primary suspect), 1 questions", "  s3: Eleanor Wright (witness), 0 questions"},
		},
		{
			name:     "status",
			input:    []string{"Hello?", "/status", "/quit"},
			contains: []string{"Turns: 1/30, 29 remaining", "Questioned: s1"},
		},
		{
			name:     "accusation options",
			input:    []string{"/accuse", "/quit"},
			contains: []string{"Usage: /accuse <suspect id> <weapon> <motive>", "Weapons:  brass candlestick, letter opener"},
		},
		{
			name:  "accusation",
			input: []string{"/accuse s1 brass candlestick inheritance", "/accuse s2 rope revenge", "Still there?", "/quit"},
			contains: []string{
				"CASE SOLVED - score 100/100 after 0 turns",
				"Weapon:  brass candlestick (correct)",
				"CASE RESOLUTION",
			},
			absent: []string{"Lydia Blackwood: " + gametest.DefaultAnswer},
		},
		{
			name:     "reset",
			input:    []string{"Hello?", "/reset", "/quit"},
			contains: []string{"[1/30]", "A new investigation has begun."},
		},
		{
			name:     "unknown command",
			input:    []string{"/dance", "/quit"},
			contains: []string{"Unknown command /dance."},
		},
		{
			name:     "end of input",
			input:    []string{"Hello?"},
			contains: []string{"Lydia Blackwood: " + gametest.DefaultAnswer},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, _ := runSession(t, config.Default(), tt.input...)
			for _, want := range tt.contains {
				require.Contains(t, out, want)
			}
			for _, unwanted := range tt.absent {
				require.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestSession_resetStartsOver(t *testing.T) {
	out, _ := runSession(t, config.Default(), "Hello?", "/reset", "/status", "/quit")

	_, afterReset, found := strings.Cut(out, "A new investigation has begun.")
	require.True(t, found)
	require.Contains(t, afterReset, "Turns: 0/30, 30 remaining")
}

func TestSession_autopilot(t *testing.T) {
	cfg := config.Default()
	cfg.Game.FirstPass = 1
	cfg.Game.SecondPass = 0

	out, stubs := runSession(t, cfg, "/auto", "/auto", "/quit")

	require.Contains(t, out, "Deduction: s1 with the brass candlestick over inheritance.")
	require.Contains(t, out, "CASE SOLVED")
	require.Contains(t, out, game.CaseClosedMessage)
	require.Equal(t, 1, stubs.Deducer.Calls())
}

func TestParseAccusation(t *testing.T) {
	tests := []struct {
		args               string
		id, weapon, motive string
		ok                 bool
	}{
		{"s1 brass candlestick inheritance", "s1", "brass candlestick", "inheritance", true},
		{"s3 rope revenge", "s3", "rope", "revenge", true},
		{"  s2   fireplace   poker  affair ", "s2", "fireplace poker", "affair", true},
		{"s1 rope", "", "", "", false},
		{"", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			id, weapon, motive, ok := parseAccusation(tt.args)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.id, id)
			require.Equal(t, tt.weapon, weapon)
			require.Equal(t, tt.motive, motive)
		})
	}
}
