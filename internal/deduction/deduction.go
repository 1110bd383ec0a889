// Package deduction extracts and validates the structured accusation a deducer emits as free text.
//
// Parsing never guesses: any deviation from the expected shape is an error wrapping ErrNoDeduction.
package deduction

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
)

var (
	ErrNoDeduction  = errors.NewSentinel("no valid deduction")
	ErrNoBlock      = errors.NewSentinel("no structured block found")
	ErrMalformed    = errors.NewSentinel("malformed structured block")
	ErrMissingField = errors.NewSentinel("missing field")
	ErrUnknownValue = errors.NewSentinel("value outside vocabulary")
)

// Parser validates accusations against closed vocabularies.
type Parser struct {
	Suspects []string
	Weapons  []string
	Motives  []string
}

type payload struct {
	SuspectID *string `json:"suspect_id"`
	Weapon    *string `json:"weapon"`
	Motive    *string `json:"motive"`
	Reasoning *string `json:"reasoning"`
}

// Parse extracts the first structured block from text and validates it.
//
// A fenced code block containing an object is preferred. Without one, the first brace-balanced object in the text
// is used.
func (p Parser) Parse(text string) (models.Accusation, error) {
	block, ok := extract(text)
	if !ok {
		return models.Accusation{}, fail(ErrNoBlock, "extract block")
	}

	var pl payload
	dec := json.NewDecoder(strings.NewReader(block))
	if err := dec.Decode(&pl); err != nil {
		return models.Accusation{}, fail(errors.Join(ErrMalformed, err), "decode block")
	}
	if dec.More() {
		return models.Accusation{}, fail(ErrMalformed, "trailing data after object")
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"suspect_id", pl.SuspectID},
		{"weapon", pl.Weapon},
		{"motive", pl.Motive},
		{"reasoning", pl.Reasoning},
	}
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			return models.Accusation{}, fail(ErrMissingField, "validate field", slog.String("field", f.name))
		}
	}

	acc := models.Accusation{
		SuspectID: strings.TrimSpace(*pl.SuspectID),
		Weapon:    strings.TrimSpace(*pl.Weapon),
		Motive:    strings.TrimSpace(*pl.Motive),
		Reasoning: strings.TrimSpace(*pl.Reasoning),
	}
	vocabularies := []struct {
		name  string
		value string
		valid []string
	}{
		{"suspect_id", acc.SuspectID, p.Suspects},
		{"weapon", acc.Weapon, p.Weapons},
		{"motive", acc.Motive, p.Motives},
	}
	for _, v := range vocabularies {
		if !slices.Contains(v.valid, v.value) {
			return models.Accusation{}, fail(ErrUnknownValue, "validate vocabulary",
				slog.String("field", v.name), slog.String("value", v.value))
		}
	}
	return acc, nil
}

func fail(cause error, msg string, attrs ...slog.Attr) error {
	return errors.Wrap(errors.Join(ErrNoDeduction, cause), msg, attrs...)
}

// extract returns the first candidate object, preferring fenced blocks.
func extract(text string) (string, bool) {
	if block, ok := fenced(text); ok {
		return block, true
	}
	return balanced(text)
}

// fenced finds the first ``` fenced block, optionally language tagged, whose body holds an object.
func fenced(text string) (string, bool) {
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return "", false
		}
		body := rest[start+3:]
		end := strings.Index(body, "```")
		if end < 0 {
			return "", false
		}
		content := body[:end]
		// Skip the info string, e.g. "json".
		if nl := strings.IndexByte(content, '\n'); nl >= 0 && !strings.Contains(content[:nl], "{") {
			content = content[nl+1:]
		}
		if obj, ok := balanced(content); ok {
			return obj, true
		}
		rest = body[end+3:]
	}
}

// balanced returns the first brace-balanced object in text. Braces inside JSON string literals are ignored.
func balanced(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			case inString:
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			return "", false
		}
		start += next + 1
	}
	return "", false
}
