// Package dates holds calendar helpers used to bound searches and greet readers.
package dates

import "time"

const dayLayout = "2006-01-02"

// OneMonthAgo returns now minus one calendar month as YYYY-MM-DD, evaluated in
// now's location.
//
// Days that do not exist in the target month roll forward (time.AddDate
// normalization): 2024-05-31 yields 2024-05-01, not 2024-04-30.
func OneMonthAgo(now time.Time) string {
	return now.AddDate(0, -1, 0).Format(dayLayout)
}

// Greeting returns a time-of-day salutation for now's hour.
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good morning!"
	case h < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}
