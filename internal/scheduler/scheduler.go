// Package scheduler runs the periodic expiry refresh so that expired flags
// and the log stay current across midnight even when nobody loads a page.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "carelog/internal/log"
)

// Refresher recomputes expiry and reports the expired count.
type Refresher interface {
	Refresh() int
}

// Scheduler wraps a cron runner with a single refresh job.
type Scheduler struct {
	cron *cron.Cron
	spec string
}

// New validates spec and registers the refresh job in loc. An empty spec
// returns a nil Scheduler, which is safe to Run.
func New(spec string, loc *time.Location, r Refresher) (*Scheduler, error) {
	if spec == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() { runRefresh(r) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, spec: spec}, nil
}

// Run starts the job and blocks until ctx is done, then waits for a running
// job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	if s == nil {
		<-ctx.Done()
		return
	}
	appLog.Info("refresh scheduler started", "schedule", s.spec)
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("refresh scheduler stopped")
}

func runRefresh(r Refresher) {
	start := time.Now()
	n := r.Refresh()
	appLog.Info("expiry refresh done", "expired", n, "took", time.Since(start).String())
}
