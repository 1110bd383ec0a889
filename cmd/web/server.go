package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/whodunit/internal/errors"
)

const (
	optimizeInterval = time.Hour
	shutdownTimeout  = 5 * time.Second
)

// serve serves HTTP on listener until ctx is cancelled and then shuts down gracefully.
func (app *application) serve(ctx context.Context, listener net.Listener) error {
	// Model calls dominate the request time, the timeout handler answers a little before the server gives up.
	requestTimeout := app.cfg.Server.RequestTimeout
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       time.Minute,
		ReadTimeout:       shutdownTimeout,
		WriteTimeout:      requestTimeout,
		ReadHeaderTimeout: time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.LogAttrs(context.Background(), slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown server")
	}()

	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server",
		slog.String("addr", listener.Addr().String()))
	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	return <-shutdownErr
}
