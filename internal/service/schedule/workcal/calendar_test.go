package workcal

import (
	"errors"
	"testing"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// weekdayCalendar builds a calendar over [from, to] where Monday-Friday are
// workdays and weekends are not.
func weekdayCalendar(t *testing.T, from, to string) *Calendar {
	t.Helper()

	start, err := domain.ParseDate(from)
	if err != nil {
		t.Fatalf("parse %q: %v", from, err)
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		t.Fatalf("parse %q: %v", to, err)
	}

	var days []domain.CalendarDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		days = append(days, domain.CalendarDay{
			Date:      d,
			IsWorkday: wd != time.Saturday && wd != time.Sunday,
		})
	}
	return New(days)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestAddWorkdays(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-03-31")

	tests := []struct {
		name string
		from string
		n    int
		want string
	}{
		{"zero offset returns input", "2025-01-06", 0, "2025-01-06"},
		{"zero offset keeps non-workday", "2025-01-04", 0, "2025-01-04"},
		{"one workday midweek", "2025-01-06", 1, "2025-01-07"},
		{"friday plus one skips weekend", "2025-01-03", 1, "2025-01-06"},
		{"across two weekends", "2025-01-03", 6, "2025-01-13"},
		{"negative offset", "2025-01-06", -1, "2025-01-03"},
		{"negative across weekend", "2025-01-13", -6, "2025-01-03"},
		{"from saturday forward", "2025-01-04", 1, "2025-01-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.AddWorkdays(date(t, tt.from), tt.n)
			if err != nil {
				t.Fatalf("AddWorkdays(%s, %d) returned error: %v", tt.from, tt.n, err)
			}
			if want := date(t, tt.want); !got.Equal(want) {
				t.Errorf("AddWorkdays(%s, %d) = %s, want %s", tt.from, tt.n, domain.FormatDate(got), tt.want)
			}
		})
	}
}

func TestAddWorkdays_OutOfRange(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-01-31")

	if _, err := cal.AddWorkdays(date(t, "2025-01-30"), 10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("forward walk off horizon: got %v, want ErrOutOfRange", err)
	}
	if _, err := cal.AddWorkdays(date(t, "2025-01-02"), -10); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("backward walk off horizon: got %v, want ErrOutOfRange", err)
	}
}

func TestCalcEndDate(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-03-31")

	tests := []struct {
		name     string
		start    string
		duration int
		want     string
	}{
		{"duration one is start itself", "2025-01-06", 1, "2025-01-06"},
		{"duration zero clamps to start", "2025-01-06", 0, "2025-01-06"},
		{"five workdays is one week", "2025-01-06", 5, "2025-01-10"},
		{"spans a weekend", "2025-01-09", 4, "2025-01-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.CalcEndDate(date(t, tt.start), tt.duration)
			if err != nil {
				t.Fatalf("CalcEndDate(%s, %d) returned error: %v", tt.start, tt.duration, err)
			}
			if want := date(t, tt.want); !got.Equal(want) {
				t.Errorf("CalcEndDate(%s, %d) = %s, want %s", tt.start, tt.duration, domain.FormatDate(got), tt.want)
			}
		})
	}
}

func TestCalcDuration(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-03-31")

	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2025-01-06", "2025-01-06", 1},
		{"full week", "2025-01-06", "2025-01-10", 5},
		{"weekend excluded", "2025-01-09", "2025-01-14", 4},
		{"weekend only floors to one", "2025-01-04", "2025-01-05", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.CalcDuration(date(t, tt.start), date(t, tt.end)); got != tt.want {
				t.Errorf("CalcDuration(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestCalcDuration_RoundTripsWithCalcEndDate(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-03-31")

	start := date(t, "2025-01-06")
	for duration := 1; duration <= 20; duration++ {
		end, err := cal.CalcEndDate(start, duration)
		if err != nil {
			t.Fatalf("CalcEndDate(%s, %d): %v", domain.FormatDate(start), duration, err)
		}
		if got := cal.CalcDuration(start, end); got != duration {
			t.Errorf("CalcDuration(CalcEndDate(start, %d)) = %d, want %d", duration, got, duration)
		}
	}
}

func TestNextWorkday(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-03-31")

	tests := []struct {
		name string
		from string
		want string
	}{
		{"workday unchanged", "2025-01-06", "2025-01-06"},
		{"saturday rolls to monday", "2025-01-04", "2025-01-06"},
		{"sunday rolls to monday", "2025-01-05", "2025-01-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.NextWorkday(date(t, tt.from))
			if err != nil {
				t.Fatalf("NextWorkday(%s) returned error: %v", tt.from, err)
			}
			if want := date(t, tt.want); !got.Equal(want) {
				t.Errorf("NextWorkday(%s) = %s, want %s", tt.from, domain.FormatDate(got), tt.want)
			}
		})
	}

	if _, err := cal.NextWorkday(date(t, "2025-04-05")); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NextWorkday outside horizon: got %v, want ErrOutOfRange", err)
	}
}

func TestCovers(t *testing.T) {
	cal := weekdayCalendar(t, "2025-01-01", "2025-01-31")

	if !cal.Covers(date(t, "2025-01-15")) {
		t.Error("Covers(2025-01-15) = false, want true")
	}
	if cal.Covers(date(t, "2025-02-01")) {
		t.Error("Covers(2025-02-01) = true, want false")
	}
	if New(nil).Covers(date(t, "2025-01-15")) {
		t.Error("empty calendar Covers anything = true, want false")
	}
}
