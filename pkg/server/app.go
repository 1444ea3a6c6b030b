package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	http            *xhttp.Server
	logger          *applogger.Logger
	closers         []namedCloser
	shutdownTimeout time.Duration
}

type namedCloser struct {
	name string
	c    io.Closer
}

// New creates an App serving srv.
func New(srv *xhttp.Server, l *applogger.Logger, shutdownTimeout time.Duration) *App {
	if l == nil {
		l = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{http: srv, logger: l, shutdownTimeout: shutdownTimeout}
}

// OnShutdown registers c to be closed after the HTTP server stops, in order.
func (a *App) OnShutdown(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.http.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return fmt.Errorf("start http: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the HTTP server first so no request sees a closed sink.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.http.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("component", nc.name), applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
