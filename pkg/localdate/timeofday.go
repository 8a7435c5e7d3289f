package localdate

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// ParseTimeOfDayList parses a comma-separated list of "HH:MM" values.
func ParseTimeOfDayList(s string) ([]TimeOfDay, error) {
	parts := strings.Split(s, ",")
	times := make([]TimeOfDay, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		t, err := ParseTimeOfDay(p)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight, the comparison key for windows.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Window is an inclusive wall-clock interval within a single day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether the instant, observed in loc, falls within the
// window (inclusive on both ends).
func (w Window) Contains(instant time.Time, loc *time.Location) bool {
	local := instant.In(loc)
	now := local.Hour()*60 + local.Minute()
	return now >= w.Start.Minutes() && now <= w.End.Minutes()
}
