package deduction_test

import (
	"testing"

	"github.com/myrjola/whodunit/internal/deduction"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/require"
)

var parser = deduction.Parser{
	Suspects: []string{"s1", "s2", "s3"},
	Weapons:  []string{"brass candlestick", "poison"},
	Motives:  []string{"inheritance", "jealousy"},
}

func TestParse_ignoresExtraKeys(t *testing.T) {
	got, err := parser.Parse(`{"suspect_id": "s1", "weapon": "poison", "motive": "jealousy", "reasoning": "r", ` +
		`"confidence": 0.9, "notes": {"alibi": "weak"}}`)
	require.NoError(t, err)
	require.Equal(t, models.Accusation{SuspectID: "s1", Weapon: "poison", Motive: "jealousy", Reasoning: "r"}, got)
}

func TestParse_valid(t *testing.T) {
	want := models.Accusation{
		SuspectID: "s1",
		Weapon:    "brass candlestick",
		Motive:    "inheritance",
		Reasoning: "She lied about the study {and} the time.",
	}
	tests := []struct {
		name string
		text string
	}{
		{
			name: "json fence",
			text: "Here is my answer:\n```json\n{\"suspect_id\": \"s1\", \"weapon\": \"brass candlestick\", " +
				"\"motive\": \"inheritance\", \"reasoning\": \"She lied about the study {and} the time.\"}\n```\nDone.",
		},
		{
			name: "untagged fence",
			text: "```\n{\"suspect_id\":\"s1\",\"weapon\":\"brass candlestick\",\"motive\":\"inheritance\"," +
				"\"reasoning\":\"She lied about the study {and} the time.\"}\n```",
		},
		{
			name: "bare object with surrounding prose",
			text: "After careful thought {\"suspect_id\": \" s1 \", \"weapon\": \"brass candlestick\", " +
				"\"motive\": \"inheritance\", \"reasoning\": \"She lied about the study {and} the time.\"} is my verdict.",
		},
		{
			name: "fence preferred over earlier bare object",
			text: "Draft: {\"suspect_id\": \"s2\"}\n```json\n{\"suspect_id\": \"s1\", \"weapon\": \"brass candlestick\", " +
				"\"motive\": \"inheritance\", \"reasoning\": \"She lied about the study {and} the time.\"}\n```",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestParse_rejects(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "no block", text: "I think it was Lydia with the candlestick.", wantErr: deduction.ErrNoBlock},
		{name: "empty", text: "", wantErr: deduction.ErrNoBlock},
		{name: "unbalanced", text: "{\"suspect_id\": \"s1\"", wantErr: deduction.ErrNoBlock},
		{
			name:    "malformed json",
			text:    "```json\n{suspect_id: s1}\n```",
			wantErr: deduction.ErrMalformed,
		},
		{
			name:    "missing reasoning",
			text:    `{"suspect_id": "s1", "weapon": "poison", "motive": "jealousy"}`,
			wantErr: deduction.ErrMissingField,
		},
		{
			name:    "blank reasoning",
			text:    `{"suspect_id": "s1", "weapon": "poison", "motive": "jealousy", "reasoning": "  "}`,
			wantErr: deduction.ErrMissingField,
		},
		{
			name:    "unknown suspect",
			text:    `{"suspect_id": "s9", "weapon": "poison", "motive": "jealousy", "reasoning": "r"}`,
			wantErr: deduction.ErrUnknownValue,
		},
		{
			name:    "weapon with different spelling",
			text:    `{"suspect_id": "s1", "weapon": "Candlestick", "motive": "jealousy", "reasoning": "r"}`,
			wantErr: deduction.ErrUnknownValue,
		},
		{
			name:    "unknown motive",
			text:    `{"suspect_id": "s1", "weapon": "poison", "motive": "boredom", "reasoning": "r"}`,
			wantErr: deduction.ErrUnknownValue,
		},
		{
			name:    "wrong type",
			text:    `{"suspect_id": 1, "weapon": "poison", "motive": "jealousy", "reasoning": "r"}`,
			wantErr: deduction.ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.text)
			require.ErrorIs(t, err, deduction.ErrNoDeduction)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, models.Accusation{}, got, "no partial result escapes")
		})
	}
}
