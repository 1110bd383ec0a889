package errors_test

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	sentinel := errors.NewSentinel("turn limit")
	err := errors.Wrap(sentinel, "interrogate", slog.String("suspect_id", "s1"))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "interrogate: turn limit", err.Error())

	wrappedTwice := errors.Wrap(err, "play round", slog.Int("turn", 3))
	require.ErrorIs(t, wrappedTwice, sentinel)
	require.Equal(t, "play round: interrogate: turn limit", wrappedTwice.Error())

	require.NoError(t, errors.Wrap(nil, "nothing to wrap"))
}

func TestSlogError(t *testing.T) {
	err := errors.Wrap(
		errors.New("model unavailable", slog.String("model", "tiny")),
		"respond",
		slog.String("role", "planner"),
	)

	attr := errors.SlogError(err)
	require.Equal(t, "error", attr.Key)
	group := attr.Value.Group()
	require.Contains(t, group, slog.String("message", "respond: model unavailable"))
	require.Contains(t, group, slog.String("role", "planner"))
	require.Contains(t, group, slog.String("model", "tiny"))

	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	require.Contains(t, group[sourceIdx].Value.String(), "errors_test.go")
}
