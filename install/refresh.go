package install

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var refreshCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// RefreshSchedule expires markers on a cron schedule so the CLI gets
// reinstalled (and picks up new releases) periodically.
type RefreshSchedule struct {
	expr     string
	schedule cron.Schedule
}

// ParseRefreshSchedule parses a 5-field UTC cron expression.
func ParseRefreshSchedule(expr string) (*RefreshSchedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("install: refresh schedule is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("install: refresh schedule must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := refreshCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("install: invalid refresh schedule: %w", err)
	}
	return &RefreshSchedule{expr: clean, schedule: schedule}, nil
}

// String returns the source expression.
func (r *RefreshSchedule) String() string {
	if r == nil {
		return ""
	}
	return r.expr
}

// Stale reports whether the schedule fired between installedAt and now.
// A nil schedule never expires markers; neither does an unknown install time.
func (r *RefreshSchedule) Stale(installedAt, now time.Time) bool {
	if r == nil || r.schedule == nil || installedAt.IsZero() {
		return false
	}
	next := r.schedule.Next(installedAt.UTC())
	return !next.After(now.UTC())
}
