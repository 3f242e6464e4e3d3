// Package scheduler fires the presence check on a fixed interval.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const (
	DefaultInterval    = 2 * time.Second
	defaultStopTimeout = 10 * time.Second
	jobName            = "presence-check"
)

var ErrAlreadyStarted = errors.New("scheduler already started")

// Scheduler triggers task until stopped. Polling is the only backend today;
// the interface keeps the tracker unaware of what drives it.
type Scheduler interface {
	Start(task func()) error
	Stop() error
}

// Interval runs the task every Interval on a gocron job. Runs never overlap:
// if a run is still going when the next is due, the next one is rescheduled.
// The first run happens one interval after Start.
type Interval struct {
	interval    time.Duration
	stopTimeout time.Duration

	mu    sync.Mutex
	sched gocron.Scheduler
}

func NewInterval(interval, stopTimeout time.Duration) *Interval {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}

	return &Interval{
		interval:    interval,
		stopTimeout: stopTimeout,
	}
}

func (i *Interval) Start(task func()) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sched != nil {
		return ErrAlreadyStarted
	}

	// a gocron scheduler cannot be restarted after Shutdown, so each Start gets a new one
	s, err := gocron.NewScheduler(gocron.WithStopTimeout(i.stopTimeout))
	if err != nil {
		return fmt.Errorf("creating gocron scheduler: %w", err)
	}

	if _, err := s.NewJob(
		gocron.DurationJob(i.interval),
		gocron.NewTask(task),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		if serr := s.Shutdown(); serr != nil {
			slog.Error("scheduler: shutting down after failed job creation", "error", serr)
		}
		return fmt.Errorf("creating %s job: %w", jobName, err)
	}

	s.Start()
	i.sched = s
	slog.Debug("scheduler: started", "interval", i.interval)
	return nil
}

// Stop cancels future runs and waits for a running one, up to the stop
// timeout. Stopping a stopped scheduler is a no-op. The handle is released
// even when shutdown reports an error.
func (i *Interval) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.sched == nil {
		return nil
	}

	s := i.sched
	i.sched = nil
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("shutting down gocron scheduler: %w", err)
	}

	slog.Debug("scheduler: stopped")
	return nil
}

func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sched != nil
}
