package rules

import (
	"testing"
	"time"
)

// monday returns a clock reading on Monday 2026-01-05 at the given time.
func monday(hour, min int) time.Time {
	return time.Date(2026, 1, 5, hour, min, 0, 0, time.UTC)
}

func TestTimeWindow_ActiveAt(t *testing.T) {
	tests := []struct {
		name   string
		window *TimeWindow
		now    time.Time
		want   bool
	}{
		{
			name:   "nil window is always open",
			window: nil,
			now:    monday(3, 0),
			want:   true,
		},
		{
			name:   "empty window is always open",
			window: &TimeWindow{},
			now:    monday(3, 0),
			want:   true,
		},
		{
			name:   "inside same-day range",
			window: &TimeWindow{Start: "09:00", End: "17:00"},
			now:    monday(12, 0),
			want:   true,
		},
		{
			name:   "range bounds are inclusive",
			window: &TimeWindow{Start: "09:00", End: "17:00"},
			now:    monday(17, 0),
			want:   true,
		},
		{
			name:   "outside same-day range",
			window: &TimeWindow{Start: "09:00", End: "17:00"},
			now:    monday(18, 0),
			want:   false,
		},
		{
			name:   "overnight range before midnight",
			window: &TimeWindow{Start: "22:00", End: "02:00"},
			now:    monday(23, 30),
			want:   true,
		},
		{
			name:   "overnight range after midnight",
			window: &TimeWindow{Start: "22:00", End: "02:00"},
			now:    monday(1, 0),
			want:   true,
		},
		{
			name:   "overnight range middle of day",
			window: &TimeWindow{Start: "22:00", End: "02:00"},
			now:    monday(10, 0),
			want:   false,
		},
		{
			name:   "start only gates the early side",
			window: &TimeWindow{Start: "20:00"},
			now:    monday(19, 59),
			want:   false,
		},
		{
			name:   "start only passes later times",
			window: &TimeWindow{Start: "20:00"},
			now:    monday(23, 0),
			want:   true,
		},
		{
			name:   "end only gates the late side",
			window: &TimeWindow{End: "08:00"},
			now:    monday(8, 1),
			want:   false,
		},
		{
			name:   "end only passes earlier times",
			window: &TimeWindow{End: "08:00"},
			now:    monday(7, 30),
			want:   true,
		},
		{
			name:   "matching day case-insensitive",
			window: &TimeWindow{Days: []string{"MONDAY", "friday"}},
			now:    monday(12, 0),
			want:   true,
		},
		{
			name:   "non-matching day",
			window: &TimeWindow{Days: []string{"saturday", "sunday"}},
			now:    monday(12, 0),
			want:   false,
		},
		{
			name:   "day filter rejects before time range runs",
			window: &TimeWindow{Start: "09:00", End: "17:00", Days: []string{"tuesday"}},
			now:    monday(12, 0),
			want:   false,
		},
		{
			name:   "day filter and time range both pass",
			window: &TimeWindow{Start: "09:00", End: "17:00", Days: []string{"monday"}},
			now:    monday(12, 0),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.ActiveAt(tt.now); got != tt.want {
				t.Errorf("ActiveAt(%s) = %v, want %v", tt.now.Format("Mon 15:04"), got, tt.want)
			}
		})
	}
}
