package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"spacetraveling/pkg/logfields"
)

// Revalidator periodically refreshes the cached listing page.
type Revalidator struct {
	scheduler gocron.Scheduler
	blog      *Blog
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRevalidator schedules a listing refresh every interval.
func NewRevalidator(blog *Blog, interval, timeout time.Duration, logger *slog.Logger) (*Revalidator, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("revalidate interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	r := &Revalidator{scheduler: s, blog: blog, timeout: timeout, logger: logger}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.refresh),
		gocron.WithName("listing-revalidate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create revalidate job: %w", err)
	}
	return r, nil
}

// Start begins the schedule.
func (r *Revalidator) Start() {
	r.logger.Info("Starting listing revalidation")
	r.scheduler.Start()
}

// Stop shuts the scheduler down.
func (r *Revalidator) Stop() error {
	r.logger.Info("Stopping listing revalidation")
	return r.scheduler.Shutdown()
}

func (r *Revalidator) refresh() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := r.blog.RefreshListing(ctx); err != nil {
		r.logger.Warn("Listing revalidation failed", logfields.Error(err))
		return
	}
	r.logger.Debug("Listing revalidated", logfields.Elapsed(time.Since(start)))
}
