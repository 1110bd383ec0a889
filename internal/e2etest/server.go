// Package e2etest starts a whole server process in-process and drives it like a browser would.
package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/logging"
)

type Server struct {
	url    string
	client *Client
	cancel context.CancelCauseFunc
	done   chan error
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

var errStopped = errors.NewSentinel("server stopped")

// StartServer starts the test server, waits for it to be ready, and return the server URL for testing.
//
// logSink is the writer to which the server logs are written. You usually want to use [io.Discard].
// lookupEnv is a function that returns the value of an environment variable. It has same signature as [os.LookupEnv].
// run is the function that starts the server. We expect the server to log the address it's listening on with the
// key LogAddrKey. Call Stop to shut the server down.
func StartServer(
	ctx context.Context,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run func(context.Context, *slog.Logger, func(string) (string, bool)) error,
) (*Server, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))

	done := make(chan error, 1)
	go func() {
		err := run(ctx, logger, lookupEnv)
		if err != nil {
			cancel(err)
		}
		done <- err
	}()

	stop := func() {
		cancel(errStopped)
		<-done
	}
	select {
	case <-ctx.Done():
		stop()
		return nil, errors.Wrap(context.Cause(ctx), "server failed to start")
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		client, err := NewClient(serverURL)
		if err != nil {
			stop()
			return nil, errors.Wrap(err, "new client")
		}
		if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
			stop()
			return nil, errors.Wrap(err, "wait for ready")
		}
		return &Server{
			url:    serverURL,
			client: client,
			cancel: cancel,
			done:   done,
		}, nil
	}
}

func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}

// Stop cancels the server and waits for run to return.
func (s *Server) Stop() error {
	s.cancel(errStopped)
	err := <-s.done
	s.client.CloseIdleConnections()
	return err
}
