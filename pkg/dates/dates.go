// Package dates provides calendar-date helpers for date-of-birth and
// appointment fields stored as date-only strings. All parsing is done
// component-wise in the local timezone so a stored "2024-03-01" never shifts
// to the previous day on hosts west of UTC.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocalDate parses a YYYY-MM-DD string into a midnight time.Time in the
// local timezone.
func ParseLocalDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in %q", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// Truncate returns t at midnight in its own location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DisplayAge renders the age for a YYYY-MM-DD date of birth at the given
// reference time. Under a year it reports months ("1 mes", "3 meses"),
// otherwise whole years ("1 año", "5 años"). A blank, malformed or future
// date of birth yields ok=false.
func DisplayAge(dob string, now time.Time) (string, bool) {
	if dob == "" {
		return "", false
	}
	birth, err := ParseLocalDate(dob)
	if err != nil {
		return "", false
	}
	if birth.After(now) {
		return "", false
	}

	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}

	if months < 12 {
		if months <= 0 {
			return "0 meses", true
		}
		if months == 1 {
			return "1 mes", true
		}
		return fmt.Sprintf("%d meses", months), true
	}

	years := months / 12
	if years == 1 {
		return "1 año", true
	}
	return fmt.Sprintf("%d años", years), true
}

// AgeInYears returns the whole-year age for a YYYY-MM-DD date of birth at the
// given reference time, never negative. Invalid or future dates yield 0.
func AgeInYears(dob string, now time.Time) int {
	if dob == "" {
		return 0
	}
	birth, err := ParseLocalDate(dob)
	if err != nil {
		return 0
	}
	age := now.Year() - birth.Year()
	m := int(now.Month()) - int(birth.Month())
	if m < 0 || (m == 0 && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
