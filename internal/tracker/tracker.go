// Package tracker holds the keyboard presence state machine. Each Check takes
// one sample and drives the display exactly once per real change.
package tracker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dsrosen6/duowatch/internal/display"
	"github.com/dsrosen6/duowatch/internal/metrics"
	"github.com/dsrosen6/duowatch/internal/usb"
)

type State string

const (
	StateUnknown State = "Unknown"
	StatePresent State = "Present"
	StateAbsent  State = "Absent"
)

func stateFromSample(present bool) State {
	if present {
		return StatePresent
	}
	return StateAbsent
}

// Action describes the outcome of one check.
type Action struct {
	Previous   State
	Current    State
	Transition bool
	// SecondaryEnabled is the arrangement requested from the display
	// controller, or nil when no display call was made.
	SecondaryEnabled *bool
	DisplayErr       error
}

// Logger receives the audit lines for state decisions.
type Logger interface {
	Log(msg string)
}

type Tracker struct {
	detector   usb.Detector
	controller display.Controller
	audit      Logger
	recorder   metrics.Recorder

	mu    sync.Mutex
	state State
}

func New(d usb.Detector, c display.Controller, audit Logger, rec metrics.Recorder) *Tracker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	return &Tracker{
		detector:   d,
		controller: c,
		audit:      audit,
		recorder:   rec,
		state:      StateUnknown,
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset forgets the last known presence. The next Check behaves like the first
// one after startup.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateUnknown
}

// Check samples presence and applies the transition. The lock is held for the
// whole check so a concurrent Reset lands either before or after it.
// A sample taken while ctx was being cancelled is discarded: the enumeration
// command was killed, which says nothing about the keyboard.
func (t *Tracker) Check(ctx context.Context) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	present := t.detector.Present(ctx)
	if ctx.Err() != nil {
		slog.Debug("tracker: context done during check; discarding sample", "error", ctx.Err())
		return Action{Previous: t.state, Current: t.state}
	}

	t.recorder.IncCheck(present)
	return t.apply(ctx, stateFromSample(present))
}

func (t *Tracker) apply(ctx context.Context, next State) Action {
	act := Action{
		Previous: t.state,
		Current:  next,
	}

	switch {
	case t.state == StateUnknown:
		t.state = next
		t.audit.Log("Initial keyboard state: " + describe(next))
		slog.Info("tracker: initial state", "state", next)
		return act

	case t.state == next:
		slog.Debug("tracker: no change", "state", next)
		return act
	}

	t.state = next
	act.Transition = true
	t.recorder.IncTransition(string(next))

	// keyboard attached covers the secondary panel, so it goes off
	enable := next == StateAbsent
	if next == StatePresent {
		t.audit.Log("KEYBOARD CONNECTED!")
	} else {
		t.audit.Log("KEYBOARD DISCONNECTED!")
	}
	slog.Info("tracker: presence changed", "from", act.Previous, "to", next, "secondary_enabled", enable)

	act.SecondaryEnabled = &enable
	if err := t.controller.SetSecondary(ctx, enable); err != nil {
		act.DisplayErr = err
		t.recorder.IncDisplayCommand(metrics.ResultFailure)
		slog.Error("tracker: setting display arrangement", "error", err)
		return act
	}

	t.recorder.IncDisplayCommand(metrics.ResultSuccess)
	return act
}

func describe(s State) string {
	if s == StatePresent {
		return "connected"
	}
	return "disconnected"
}
