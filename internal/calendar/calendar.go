// Package calendar provides leap-year and days-in-month arithmetic for the
// date parsing and timestamp generation pipeline. All functions are pure.
package calendar

import "fmt"

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in the given month of the given
// year, accounting for leap-year February.
func DaysInMonth(year, month int) (int, error) {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31, nil
	case 4, 6, 9, 11:
		return 30, nil
	case 2:
		if IsLeapYear(year) {
			return 29, nil
		}
		return 28, nil
	default:
		return 0, fmt.Errorf("invalid month: %d", month)
	}
}

// ValidDate reports whether year/month/day name a real calendar date.
func ValidDate(year, month, day int) bool {
	days, err := DaysInMonth(year, month)
	if err != nil {
		return false
	}
	return day >= 1 && day <= days
}
