package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	stdnet "net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peterkuimelis/tcglive/internal/app"
	"github.com/peterkuimelis/tcglive/internal/config"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
	"github.com/peterkuimelis/tcglive/internal/otel"
	"github.com/peterkuimelis/tcglive/internal/web"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "tcglive", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("tracing shutdown error", "error", err)
		}
	}()

	var events io.Writer
	if cfg.EventLog {
		events = os.Stderr
	}
	a, err := app.New(cfg, logger, events)
	if err != nil {
		return err
	}
	defer a.Close()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	var e *echo.Echo
	if cfg.HTTPAddr != "" {
		srv := web.NewServer(web.Options{
			Catalog:        a.Catalog,
			Decks:          a.Decks,
			Manager:        a.Manager,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		})
		e = srv.Echo()
		// WebSocket handlers end with their request context.
		e.Server.BaseContext = func(stdnet.Listener) context.Context { return ctx }

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("starting server", "addr", cfg.HTTPAddr)
			if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	if cfg.TCPAddr != "" {
		tcp := &tcgnet.Server{
			Addr:    cfg.TCPAddr,
			Handler: &tcgnet.Handler{Manager: a.Manager, Logger: logger},
			Logger:  logger,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcp.ListenAndServe(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		stop()
	}
	logger.Info("shutting down")

	if e != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}
	wg.Wait()
	return runErr
}
