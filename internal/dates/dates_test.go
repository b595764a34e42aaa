package dates

import (
	"regexp"
	"testing"
	"time"
)

func TestOneMonthAgo(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"year boundary", time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC), "2023-12-15"},
		{"february to january", time.Date(2024, time.February, 15, 10, 30, 0, 0, time.UTC), "2024-01-15"},
		{"march to february leap year", time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC), "2024-02-15"},
		{"march to february", time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC), "2023-02-15"},
		{"may 31 rolls over", time.Date(2024, time.May, 31, 10, 30, 0, 0, time.UTC), "2024-05-01"},
		{"march 31 rolls over", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), "2024-03-02"},
		{"january 31", time.Date(2024, time.January, 31, 10, 30, 0, 0, time.UTC), "2023-12-31"},
		{"late evening", time.Date(2024, time.June, 15, 23, 30, 0, 0, time.UTC), "2024-05-15"},
	}

	format := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OneMonthAgo(tc.now)
			if got != tc.want {
				t.Fatalf("OneMonthAgo(%v) = %q want %q", tc.now, got, tc.want)
			}
			if !format.MatchString(got) {
				t.Fatalf("unexpected format %q", got)
			}
		})
	}
}

func TestOneMonthAgoUsesLocation(t *testing.T) {
	// 2024-06-01 02:00 in UTC+5 is still May 31 in UTC.
	zone := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2024, time.June, 1, 2, 0, 0, 0, zone)
	if got := OneMonthAgo(now); got != "2024-05-01" {
		t.Fatalf("OneMonthAgo = %q", got)
	}
	if got := OneMonthAgo(now.UTC()); got != "2024-05-01" {
		t.Fatalf("OneMonthAgo(UTC) = %q", got)
	}
}

func TestGreeting(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }
	for _, h := range []int{0, 6, 11} {
		if got := Greeting(day(h)); got != "Good morning!" {
			t.Errorf("hour %d: %q", h, got)
		}
	}
	for _, h := range []int{12, 15, 17} {
		if got := Greeting(day(h)); got != "Good afternoon!" {
			t.Errorf("hour %d: %q", h, got)
		}
	}
	for _, h := range []int{18, 22, 23} {
		if got := Greeting(day(h)); got != "Good evening!" {
			t.Errorf("hour %d: %q", h, got)
		}
	}
}
