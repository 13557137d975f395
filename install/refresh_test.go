package install

import (
	"testing"
	"time"
)

func TestParseRefreshSchedule(t *testing.T) {
	schedule, err := ParseRefreshSchedule(" 0 3 * * 1 ")
	if err != nil {
		t.Fatalf("ParseRefreshSchedule() error = %v", err)
	}
	if schedule.String() != "0 3 * * 1" {
		t.Fatalf("String() = %q", schedule.String())
	}

	for _, expr := range []string{"", "CRON_TZ=Europe/Paris 0 3 * * *", "TZ=UTC 0 3 * * *", "0 3 * *", "not a schedule"} {
		if _, err := ParseRefreshSchedule(expr); err == nil {
			t.Fatalf("ParseRefreshSchedule(%q) expected error", expr)
		}
	}
}

func TestRefreshScheduleStale(t *testing.T) {
	weekly, err := ParseRefreshSchedule("0 3 * * 1")
	if err != nil {
		t.Fatalf("ParseRefreshSchedule() error = %v", err)
	}

	// 2026-03-04 is a Wednesday; next fire is Monday 2026-03-09 03:00 UTC.
	installedAt := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "same week", now: time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC), want: false},
		{name: "at fire time", now: time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC), want: true},
		{name: "after fire time", now: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekly.Stale(installedAt, tt.now); got != tt.want {
				t.Fatalf("Stale() = %v, want %v", got, tt.want)
			}
		})
	}

	if weekly.Stale(time.Time{}, installedAt.AddDate(1, 0, 0)) {
		t.Fatal("unknown install time must not be stale")
	}
	var none *RefreshSchedule
	if none.Stale(installedAt, installedAt.AddDate(1, 0, 0)) {
		t.Fatal("nil schedule must not be stale")
	}
	if none.String() != "" {
		t.Fatalf("nil String() = %q", none.String())
	}
}
