package img

import (
	"testing"

	"github.com/myrjola/whodunit/internal/casefile"
	"github.com/stretchr/testify/require"
)

func Test_portraitPrompt(t *testing.T) {
	c, err := casefile.Default()
	require.NoError(t, err)

	for _, profile := range c.Suspects() {
		t.Run(profile.ID, func(t *testing.T) {
			prompt := portraitPrompt(c, profile)
			require.Contains(t, prompt, profile.Name)
			require.Contains(t, prompt, profile.Portrait)
			require.Contains(t, prompt, `"The Blackwood Mansion"`)
			require.NotContains(t, prompt, string(profile.Role))
		})
	}
}
