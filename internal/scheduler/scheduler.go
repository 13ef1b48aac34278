// Package scheduler keeps a client's view of its goals fresh. It decides
// when to ask the server; it never computes progress.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/realtime"
	"github.com/jonboulle/clockwork"
)

// Source is the server side of the goal API.
type Source interface {
	Goals(ctx context.Context) (*model.GoalList, error)
	ForceReset(ctx context.Context) (*model.RefreshResult, error)
}

type Config struct {
	Interval time.Duration // tick and maximum age of a snapshot
	Timeout  time.Duration // per refresh call
	Periods  period.Calculator
	Clock    clockwork.Clock
}

type Scheduler struct {
	source   Source
	clock    clockwork.Clock
	periods  period.Calculator
	interval time.Duration
	timeout  time.Duration

	mu          sync.Mutex
	snapshot    *model.GoalList
	lastSuccess time.Time
	lastErr     error
	listeners   []func(*model.GoalList)
}

func New(source Source, cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Scheduler{
		source:   source,
		clock:    cfg.Clock,
		periods:  cfg.Periods,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
	}
}

// OnUpdate registers fn to receive every applied snapshot.
func (s *Scheduler) OnUpdate(fn func(*model.GoalList)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the last applied goal list, or nil before the first
// successful refresh.
func (s *Scheduler) Snapshot() *model.GoalList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Err returns the error of the most recent refresh, or nil.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Run refreshes immediately, then checks on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	_ = s.refresh(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.Check(ctx)
		}
	}
}

// Check refreshes when the snapshot is missing, older than the interval, or
// holds a goal whose period has ended on the local clock. It reports
// whether a refresh was attempted.
func (s *Scheduler) Check(ctx context.Context) bool {
	if !s.due() {
		return false
	}
	_ = s.refresh(ctx)
	return true
}

func (s *Scheduler) due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.snapshot == nil || s.lastErr != nil || now.Sub(s.lastSuccess) >= s.interval {
		return true
	}
	for _, g := range s.snapshot.Goals {
		// advisory only; the server decides
		if stale, err := s.periods.IsStale(g.GoalType, g.LastResetAt, now); err == nil && stale {
			return true
		}
	}
	return false
}

// ActivityLogged asks for a soft refresh after new activity.
func (s *Scheduler) ActivityLogged(ctx context.Context) error {
	return s.refresh(ctx)
}

// Manual forces a reset of every goal, then reloads the list.
func (s *Scheduler) Manual(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	_, err := s.source.ForceReset(callCtx)
	cancel()
	if err != nil {
		s.setErr(err)
		return err
	}
	return s.refresh(ctx)
}

// HandleEvent reacts to realtime events from the server.
func (s *Scheduler) HandleEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventActivityLogged, realtime.EventGoalReached:
		_ = s.ActivityLogged(ctx)
	case realtime.EventGoalsRefreshed:
		if ev.RefreshedAt != nil {
			if snap := s.Snapshot(); snap != nil && !ev.RefreshedAt.After(snap.RefreshedAt) {
				return
			}
		}
		_ = s.refresh(ctx)
	}
}

func (s *Scheduler) refresh(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.source.Goals(callCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("goal refresh timed out, keeping cached goals", "timeout", s.timeout)
		} else {
			slog.Warn("goal refresh failed, keeping cached goals", "error", err)
		}
		s.setErr(err)
		return err
	}

	s.apply(list)
	if list.RefreshError != "" {
		return errors.New(list.RefreshError)
	}
	return nil
}

// apply installs list unless a newer server snapshot is already held.
func (s *Scheduler) apply(list *model.GoalList) {
	s.mu.Lock()
	if s.snapshot != nil && list.RefreshedAt.Before(s.snapshot.RefreshedAt) {
		s.mu.Unlock()
		slog.Debug("discarding out-of-order goal snapshot", "refreshed_at", list.RefreshedAt)
		return
	}
	s.snapshot = list
	s.lastSuccess = s.clock.Now()
	s.lastErr = nil
	if list.RefreshError != "" {
		s.lastErr = errors.New(list.RefreshError)
	}
	listeners := append([]func(*model.GoalList){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(list)
	}
}

func (s *Scheduler) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
