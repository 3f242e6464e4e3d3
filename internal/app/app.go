// Package app ties the watch loop together: it owns the scheduler handle and
// exposes the Enable/Disable lifecycle the daemon and its socket drive.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dsrosen6/duowatch/internal/config"
	"github.com/dsrosen6/duowatch/internal/display"
	"github.com/dsrosen6/duowatch/internal/metrics"
	"github.com/dsrosen6/duowatch/internal/notify"
	"github.com/dsrosen6/duowatch/internal/scheduler"
	"github.com/dsrosen6/duowatch/internal/tracker"
	"github.com/dsrosen6/duowatch/internal/usb"
)

const (
	notifyTitle = "ASUS MultiDisplay"
	notifyBody  = "Monitoring keyboard connection status"
)

type Logger interface {
	Log(msg string)
}

type App struct {
	Cfg      *config.Config
	Audit    Logger
	Detector usb.Detector
	Tracker  *tracker.Tracker

	notifier       notify.Notifier
	recorder       metrics.Recorder
	metricsHandler http.Handler

	mu      sync.Mutex
	sched   scheduler.Scheduler
	enabled bool
}

type Option func(*App)

func WithScheduler(s scheduler.Scheduler) Option {
	return func(a *App) {
		a.sched = s
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

// WithMetrics records tracker activity on rec and serves h on the configured
// metrics address while listening.
func WithMetrics(rec metrics.Recorder, h http.Handler) Option {
	return func(a *App) {
		a.recorder = rec
		a.metricsHandler = h
	}
}

func NewApp(cfg *config.Config, audit Logger, d usb.Detector, c display.Controller, opts ...Option) *App {
	a := &App{
		Cfg:      cfg,
		Audit:    audit,
		Detector: d,
		notifier: notify.Noop{},
		recorder: metrics.NoopRecorder{},
	}

	for _, o := range opts {
		o(a)
	}

	if a.sched == nil {
		a.sched = scheduler.NewInterval(cfg.Interval, cfg.StopTimeout)
	}

	a.Tracker = tracker.New(d, c, audit, a.recorder)
	return a
}

// Enable starts periodic checks. Calling it while enabled does nothing. The
// first check after Enable only records the initial state.
func (a *App) Enable(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled {
		slog.Debug("app: already enabled")
		return nil
	}

	a.Audit.Log("ASUS MultiDisplay enabled")
	if err := a.sched.Start(func() { a.Tracker.Check(ctx) }); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	a.enabled = true
	slog.Info("app: watcher enabled", "interval", a.Cfg.Interval)

	if err := a.notifier.Notify(ctx, notifyTitle, notifyBody); err != nil {
		slog.Warn("app: sending startup notification", "error", err)
	}

	return nil
}

// Disable stops periodic checks and forgets the last known presence, so a
// later Enable starts fresh. Calling it while disabled does nothing. The
// display is left as it is.
func (a *App) Disable() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		slog.Debug("app: already disabled")
		return nil
	}

	a.Audit.Log("ASUS MultiDisplay disabled")
	err := a.sched.Stop()
	a.enabled = false
	a.Tracker.Reset()
	slog.Info("app: watcher disabled")

	if err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}

	return nil
}

func (a *App) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

type Status struct {
	Enabled bool
	State   tracker.State
}

func (s Status) String() string {
	return fmt.Sprintf("enabled=%t state=%s", s.Enabled, s.State)
}

func (a *App) Status() Status {
	return Status{
		Enabled: a.Enabled(),
		State:   a.Tracker.State(),
	}
}

// Probe runs the detector once without touching tracked state.
func (a *App) Probe(ctx context.Context) bool {
	return a.Detector.Present(ctx)
}
