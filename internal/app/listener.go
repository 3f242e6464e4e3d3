package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dsrosen6/duowatch/internal/listener"
)

// Listen enables the watcher and serves the control socket until ctx is done
// or the socket fails. The watcher is disabled on the way out.
func (a *App) Listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan listener.Event, 16)
	errc := make(chan error, 2)

	go func() {
		if err := listener.NewListener(a.Cfg.SocketPath).Listen(ctx, events); err != nil {
			errc <- err
			cancel()
		}
	}()

	if a.metricsHandler != nil && a.Cfg.MetricsAddr != "" {
		go func() {
			if err := a.serveMetrics(ctx); err != nil {
				errc <- err
				cancel()
			}
		}()
	}

	if err := a.Enable(ctx); err != nil {
		return fmt.Errorf("enabling watcher: %w", err)
	}

	defer func() {
		if err := a.Disable(); err != nil {
			slog.Error("disabling watcher", "error", err)
		}
	}()

	for {
		select {
		case ev := <-events:
			slog.Info("received event from listener", "type", ev.Type)
			ev.Reply <- a.handleEvent(ctx, ev)

		case err := <-errc:
			return fmt.Errorf("listener failed: %w", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) handleEvent(ctx context.Context, ev listener.Event) string {
	switch ev.Type {
	case listener.EnableEvent:
		if err := a.Enable(ctx); err != nil {
			slog.Error("enabling watcher", "error", err)
			return "ERR " + err.Error()
		}
		return "OK " + a.Status().String()

	case listener.DisableEvent:
		if err := a.Disable(); err != nil {
			slog.Error("disabling watcher", "error", err)
			return "ERR " + err.Error()
		}
		return "OK " + a.Status().String()

	case listener.StatusEvent:
		return "OK " + a.Status().String()

	case listener.CheckEvent:
		return fmt.Sprintf("OK present=%t %s", a.Probe(ctx), a.Status())

	default:
		return "ERR unknown command"
	}
}

func (a *App) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metricsHandler)

	srv := &http.Server{
		Addr:              a.Cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server: shutting down", "error", err)
		}
	}()

	slog.Info("metrics server: listening", "addr", a.Cfg.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}

	return nil
}
