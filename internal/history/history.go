// Package history renders a suspect's conversation log into the text prepended to the next question.
//
// Long interrogations are compressed: once the game has passed a turn threshold, older exchanges are reduced to
// one summary line each so the text forwarded per call stays bounded.
package history

import (
	"fmt"
	"strings"

	"github.com/myrjola/whodunit/internal/models"
)

// Builder holds the compression windows.
type Builder struct {
	// CompressAfter is the total turn count from which compression may kick in.
	CompressAfter int
	// EarlyWindow is the number of verbatim exchanges before compression.
	EarlyWindow int
	// RecentWindow is the number of verbatim exchanges after compression.
	RecentWindow int
	// SummaryRunes truncates questions in summary lines.
	SummaryRunes int
}

// Build renders log for the suspect called speaker. It returns "" for an empty log.
func (b Builder) Build(speaker string, log []models.Exchange, totalTurns int) string {
	if len(log) == 0 {
		return ""
	}

	var sb strings.Builder
	if totalTurns < b.CompressAfter || len(log) <= b.RecentWindow {
		sb.WriteString("PREVIOUS EXCHANGES IN THIS INTERROGATION SESSION:\n")
		writeVerbatim(&sb, speaker, Tail(log, b.EarlyWindow))
		sb.WriteString("\n\n")
		return sb.String()
	}

	split := len(log) - b.RecentWindow
	sb.WriteString("SUMMARY OF EARLIER EXCHANGES (condensed):\n")
	for i, e := range log[:split] {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "  - Asked about: '%s' - you answered evasively / denied involvement.",
			Truncate(e.Question, b.SummaryRunes, ""))
	}
	sb.WriteString("\n\nMOST RECENT EXCHANGES (full):\n")
	writeVerbatim(&sb, speaker, log[split:])
	sb.WriteString("\n\n")
	return sb.String()
}

func writeVerbatim(sb *strings.Builder, speaker string, exchanges []models.Exchange) {
	for i, e := range exchanges {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(sb, "Detective: %s\nYou (%s): %s", e.Question, speaker, e.Answer)
	}
}

// Tail returns the last n exchanges of log.
func Tail(log []models.Exchange, n int) []models.Exchange {
	if n <= 0 {
		return nil
	}
	if len(log) > n {
		return log[len(log)-n:]
	}
	return log
}

// Truncate cuts s to at most n runes, appending ellipsis when something was cut.
func Truncate(s string, n int, ellipsis string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}
