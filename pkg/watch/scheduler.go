package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/observability"
)

// Scheduler reloads on a cron schedule. Specs use the standard five fields
// or descriptors such as "@hourly" and "@every 5m".
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	logger logrus.FieldLogger
}

// NewScheduler schedules reloader on spec.
func NewScheduler(reloader *Reloader, spec string, logger logrus.FieldLogger) (*Scheduler, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		// Failures are logged and counted by the reloader.
		_ = reloader.Reload(TriggerSchedule)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	return &Scheduler{
		cron:   c,
		spec:   spec,
		logger: logger.WithField("component", "scheduler"),
	}, nil
}

// Run starts the schedule and blocks until ctx is done. A reload in progress
// is allowed to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.WithField("schedule", s.spec).Info("Scheduled reloads started")

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduled reloads stopped")
	return nil
}
