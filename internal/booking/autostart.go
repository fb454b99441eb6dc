package booking

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ClockTrigger runs the automatic lifecycle sweep on every half-hour
// boundary. It fires for whichever tenant is currently selected; with no
// tenant selected the tick is a no-op.
type ClockTrigger struct {
	cron    *cron.Cron
	svc     *Service
	current func() string
	logger  *zerolog.Logger
}

// NewClockTrigger constructs a trigger. current reports the selected tenant
// ID, empty when none.
func NewClockTrigger(svc *Service, current func() string, logger *zerolog.Logger) *ClockTrigger {
	return &ClockTrigger{
		cron:    cron.New(),
		svc:     svc,
		current: current,
		logger:  logger,
	}
}

// Start arms the 30-minute boundary schedule.
func (t *ClockTrigger) Start() error {
	if _, err := t.cron.AddFunc("0,30 * * * *", t.fire); err != nil {
		return err
	}
	t.cron.Start()
	t.logger.Info().Msg("clock trigger armed on 30-minute boundaries")
	return nil
}

// Stop halts the schedule. A sweep already running is allowed to finish.
func (t *ClockTrigger) Stop() {
	t.cron.Stop()
}

func (t *ClockTrigger) fire() {
	tenant := t.current()
	if tenant == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t.svc.AutoStart(ctx, tenant, time.Now())
}
