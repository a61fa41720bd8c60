package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"FinAgent/pkg/config"
	xhttp "FinAgent/pkg/http"
	"FinAgent/pkg/http/middleware"
	applogger "FinAgent/pkg/logger"
)

type closer struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	limiter    middleware.Allower
	httpServer *xhttp.Server
	closers    []closer
}

// New creates a new App. limiter may be nil.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, limiter middleware.Allower) *App {
	if log == nil {
		log = applogger.NewNop()
	}
	return &App{cfg: cfg, log: log, handler: handler, limiter: limiter}
}

// OnShutdown registers a resource closed after the HTTP server stops, in reverse registration order.
func (a *App) OnShutdown(name string, c io.Closer) {
	a.closers = append(a.closers, closer{name: name, c: c})
}

// Server builds the HTTP server without starting it.
func (a *App) Server() *xhttp.Server {
	if a.httpServer != nil {
		return a.httpServer
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithLogger(a.log),
		xhttp.WithTrustedProxies(a.cfg.Server.TrustedProxies...),
	}
	if a.limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(a.limiter))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)
	return a.httpServer
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	srv := a.Server()
	if err := srv.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("finagent started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", srv.Addr()),
		applogger.Bool("rate_limit", a.limiter != nil),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Flush shipped error logs before their publisher closes.
	a.log.RemoveCollector()

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
