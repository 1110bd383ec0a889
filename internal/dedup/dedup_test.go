package dedup_test

import (
	"testing"

	"github.com/myrjola/whodunit/internal/dedup"
	"github.com/stretchr/testify/require"
)

func set(tokens ...string) dedup.Set {
	s := make(dedup.Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		text string
		want dedup.Set
	}{
		{text: "Where were you at the time of the murder?", want: set("where", "time", "murder")},
		{text: "Did you SEE the Candlestick, Lydia?!", want: set("see", "candlestick", "lydia")},
		{text: "Is it 23:15?", want: set()},
		{text: "", want: set()},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, dedup.Normalize(tt.text))
		})
	}
}

func TestSimilarity(t *testing.T) {
	a := set("where", "time", "murder")
	b := set("time", "murder", "library", "night")

	require.InDelta(t, 2.0/5.0, dedup.Similarity(a, b), 1e-9)
	require.InDelta(t, dedup.Similarity(a, b), dedup.Similarity(b, a), 1e-9, "symmetric")
	require.InDelta(t, 1.0, dedup.Similarity(a, a), 1e-9, "self-similarity")
	require.InDelta(t, 1.0, dedup.Similarity(set(), set()), 1e-9)
	require.InDelta(t, 0.0, dedup.Similarity(a, set()), 1e-9)
	require.InDelta(t, 0.0, dedup.Similarity(set(), a), 1e-9)
}

func TestIsDuplicate(t *testing.T) {
	history := []dedup.Set{set("alibi", "study"), set("where", "time", "murder")}

	require.True(t, dedup.IsDuplicate(set("where", "time", "murder"), history, 1.0))
	require.True(t, dedup.IsDuplicate(set("where", "time", "murder", "exactly"), history, 0.65))
	require.False(t, dedup.IsDuplicate(set("inheritance", "money"), history, 0.65))
	require.False(t, dedup.IsDuplicate(set("where"), nil, 0.1))
}

func TestMemory(t *testing.T) {
	var memory dedup.Memory
	const question = "Where were you at the time of the murder?"

	require.False(t, memory.Seen("s1", question, 0.65))
	memory.Remember("s1", question)

	require.True(t, memory.Seen("s1", question, 1.0), "the same question twice is a duplicate")
	require.True(t, memory.Seen("s1", "Where were you at the time of that murder?", 0.65))
	require.False(t, memory.Seen("s1", "Who inherits the estate fortune?", 0.65), "no shared tokens")
	require.False(t, memory.Seen("s2", question, 0.65), "memory is per entity")

	memory.Seed("s2", []string{"Who inherits the estate fortune?", question})
	require.Equal(t, 2, memory.Len("s2"))
	require.True(t, memory.Seen("s2", question, 0.65))

	memory.Reset()
	require.False(t, memory.Seen("s1", question, 0.65))
	require.Equal(t, 0, memory.Len("s2"))
}
