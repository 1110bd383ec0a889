package casefile_test

import (
	"strings"
	"testing"

	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := casefile.Default()
	require.NoError(t, err)

	require.Equal(t, "mansion_murder_01", c.ID())
	require.Equal(t, []string{"s1", "s2", "s3"}, c.SuspectIDs())
	require.Contains(t, c.Weapons(), "brass candlestick")
	require.Contains(t, c.Motives(), "inheritance")
	require.Equal(t, "s1", c.Truth().CulpritID)
	require.Contains(t, c.Triggers(), "23:15")

	lydia, ok := c.Suspect("s1")
	require.True(t, ok)
	require.Equal(t, models.RoleKiller, lydia.Role)
	require.Equal(t, "primary suspect", lydia.Role.Label())

	_, ok = c.Suspect("s9")
	require.False(t, ok)
}

func TestCase_accessorsReturnCopies(t *testing.T) {
	c, err := casefile.Default()
	require.NoError(t, err)

	suspects := c.Suspects()
	suspects[0].Redlines[0] = "tampered"
	weapons := c.Weapons()
	weapons[0] = "tampered"

	lydia, _ := c.Suspect("s1")
	require.NotEqual(t, "tampered", lydia.Redlines[0])
	require.NotEqual(t, "tampered", c.Weapons()[0])
}

func TestLoad(t *testing.T) {
	valid := `
id: tiny
weapons: [rope]
motives: [greed]
truth: {culprit_id: a, weapon: rope, motive: greed}
suspects:
  - {id: a, name: Ann, role: killer}
triggers: [ROPE]
`
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "valid", yaml: valid},
		{name: "unknown field", yaml: valid + "\nunknown: 1\n", wantErr: true},
		{name: "culprit not a suspect", yaml: strings.Replace(valid, "culprit_id: a", "culprit_id: b", 1), wantErr: true},
		{name: "weapon not in vocabulary", yaml: strings.Replace(valid, "weapon: rope", "weapon: axe", 1), wantErr: true},
		{name: "motive not in vocabulary", yaml: strings.Replace(valid, "motive: greed}", "motive: envy}", 1), wantErr: true},
		{name: "invalid role", yaml: strings.Replace(valid, "role: killer", "role: butler", 1), wantErr: true},
		{
			name:    "duplicate ids",
			yaml:    strings.Replace(valid, "- {id: a, name: Ann, role: killer}", "- {id: a, name: Ann, role: killer}\n  - {id: a, name: Bo, role: innocent}", 1),
			wantErr: true,
		},
		{name: "no suspects", yaml: "id: empty\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := casefile.Load(strings.NewReader(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []string{"rope"}, c.Triggers(), "triggers are lower-cased")
		})
	}
}
