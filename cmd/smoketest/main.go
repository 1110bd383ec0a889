package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/myrjola/whodunit/internal/e2etest"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
)

// TestBoard checks that the board renders and that switching suspects works. It never asks a question so that
// no model calls are made.
func TestBoard(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get board")
	}
	suspects := doc.Find(".suspects button[data-suspect]")
	if suspects.Length() < 2 { //nolint:mnd // switching needs two suspects.
		return errors.New("too few suspects on the board", slog.Int("suspects", suspects.Length()))
	}
	second, _ := suspects.Eq(1).Attr("data-suspect")
	if doc, err = client.SubmitForm(ctx, "/", "/suspects/"+second, nil); err != nil {
		return errors.Wrap(err, "switch suspect", slog.String("suspect_id", second))
	}
	if current, _ := doc.Find(".suspects button[aria-current=true]").Attr("data-suspect"); current != second {
		return errors.New("suspect not switched", slog.String("want", second), slog.String("got", current))
	}
	if _, err = client.GetDoc(ctx, "/sessions"); err != nil {
		return errors.Wrap(err, "get sessions")
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	url := os.Args[1]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestBoard(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing board", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
}
