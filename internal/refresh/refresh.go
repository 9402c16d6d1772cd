// Package refresh periodically reloads events and hands them to the
// calendar host.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// EventLoader produces the dynamic part of the event collection.
// *ics.Loader satisfies it.
type EventLoader interface {
	Load(ctx context.Context) ([]model.Event, error)
}

// ApplyFunc receives the merged event collection after every run.
type ApplyFunc func(events []model.Event)

// Refresher merges a static event list with the output of an EventLoader
// and applies the result. Runs never overlap.
type Refresher struct {
	loader EventLoader
	static []model.Event
	apply  ApplyFunc

	mu sync.Mutex
}

// New creates a Refresher. loader may be nil when only static events exist.
func New(loader EventLoader, static []model.Event, apply ApplyFunc) *Refresher {
	return &Refresher{
		loader: loader,
		static: model.CloneEvents(static),
		apply:  apply,
	}
}

// RunOnce loads and applies events once. When the loader fails without
// producing any events the previous collection is left untouched; partial
// results are applied and the error is still returned.
func (r *Refresher) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := model.CloneEvents(r.static)

	var loadErr error
	if r.loader != nil {
		loaded, err := r.loader.Load(ctx)
		loadErr = err
		if err != nil && len(loaded) == 0 {
			return fmt.Errorf("refresh: load: %w", err)
		}
		events = append(events, loaded...)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if r.apply != nil {
		r.apply(events)
	}
	appLog.Info("refresh applied", "events", len(events), "static", len(r.static))

	if loadErr != nil {
		return fmt.Errorf("refresh: partial load: %w", loadErr)
	}
	return nil
}

// Start runs RunOnce on a standard five-field cron schedule until ctx is
// cancelled. It does not run immediately; call RunOnce first for that.
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		return errors.New("refresh: empty schedule")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("scheduled refresh failed", err, "schedule", schedule)
		}
	}); err != nil {
		return fmt.Errorf("refresh: invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	appLog.Info("refresh scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("refresh scheduler stopped")
	}()
	return nil
}

// ValidateSchedule reports whether schedule parses as a standard cron line.
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("refresh: invalid schedule %q: %w", schedule, err)
	}
	return nil
}
