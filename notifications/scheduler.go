package notifications

import (
	"context"
	"time"
)

// NextRun returns the next occurrence of hour:00 in loc strictly after now.
func NextRun(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Schedule calls run every day at hour:00 in loc until ctx is done.
func Schedule(ctx context.Context, hour int, loc *time.Location, run func(context.Context)) {
	for {
		wait := time.Until(NextRun(time.Now(), hour, loc))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			run(ctx)
		}
	}
}
