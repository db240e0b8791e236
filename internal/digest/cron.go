package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/processmap/internal/logger"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("digest: invalid schedule %q: %w", expr, err)
	}
	return sched, nil
}

// nextDelay returns the wait from now until the next fire time.
func nextDelay(sched cron.Schedule, now time.Time) time.Duration {
	d := sched.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RunSchedule calls run at every fire time of expr until ctx is cancelled.
// A failing run is logged and the loop continues.
func RunSchedule(ctx context.Context, expr string, log *logger.Logger, run func(context.Context) error) error {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return err
	}
	if log == nil {
		log = logger.Nop()
	}

	for {
		wait := nextDelay(sched, time.Now())
		log.Info("digest: next run scheduled", "in", wait.Round(time.Second).String())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if err := run(ctx); err != nil {
			log.Error("digest: run failed", "error", err)
		}
	}
}
