// Package schedule runs a job on a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 9 * * 1-5" for
// weekdays at 9am.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Parse validates a cron expression.
func Parse(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty schedule")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// Next is the first activation of spec strictly after now, evaluated in loc.
func Next(spec string, now time.Time, loc *time.Location) (time.Time, error) {
	sched, err := Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now.In(loc)), nil
}

// Run calls job at every activation of spec until ctx is canceled. Job errors
// are logged and do not stop the loop.
func Run(ctx context.Context, name, spec string, loc *time.Location, job func(context.Context) error) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}
	log.Printf("%s scheduled (cron: %s, tz: %s)", name, spec, loc)

	for {
		now := time.Now().In(loc)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next %s at %s (in %s)", name, next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("%s scheduler stopped", name)
			return ctx.Err()
		case <-timer.C:
		}

		if err := job(ctx); err != nil {
			log.Printf("%s error: %v", name, err)
		} else {
			log.Printf("%s complete", name)
		}
	}
}
