package rules

import (
	"strings"
	"time"
)

// TimeWindow restricts a rule to certain times of day and days of the week.
// Times are "HH:MM" strings in the clock's local day; comparisons are
// lexicographic, which is correct for zero-padded 24h times.
type TimeWindow struct {
	Start string   `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	End   string   `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Days  []string `json:"days_of_week,omitempty" yaml:"days_of_week,omitempty"`
}

// ActiveAt reports whether the window is open at the given time.
//
// Day names match case-insensitively. With both bounds set, Start > End means
// the window crosses midnight and stays open from Start through the end of
// the day and again until End. A single bound gates one side only. A nil
// window is always open.
func (w *TimeWindow) ActiveAt(now time.Time) bool {
	if w == nil {
		return true
	}

	if len(w.Days) > 0 {
		day := strings.ToLower(now.Weekday().String())
		found := false
		for _, d := range w.Days {
			if strings.ToLower(d) == day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	cur := now.Format("15:04")
	switch {
	case w.Start != "" && w.End != "":
		if w.Start <= w.End {
			return w.Start <= cur && cur <= w.End
		}
		return cur >= w.Start || cur <= w.End
	case w.Start != "":
		return cur >= w.Start
	case w.End != "":
		return cur <= w.End
	}
	return true
}
