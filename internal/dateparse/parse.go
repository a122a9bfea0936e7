package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chronogit/internal/calendar"
)

// Year bounds accepted by the parser. The lower bound is the Unix epoch;
// the upper bound keeps generated commit dates plausible.
const (
	MinYear = 1970
	MaxYear = 2030
)

// MaxRangeSpan caps how many years a range may cover, to prevent a typo from
// producing thousands of commits.
const MaxRangeSpan = 50

var (
	yearRe      = regexp.MustCompile(`^(\d{4})$`)
	rangeRe     = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{4})$`)
	fullDateRe  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})$|^([A-Za-z]{3,9})\s+(\d{4})$`)
)

// monthNames resolves English month names and abbreviations, lowercase.
var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":  5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// Parse classifies input into one of the five canonical variants, validating
// as it goes. The match order matters because the shapes overlap lexically:
// a comma is exclusive to lists so it short-circuits everything else; range
// and full date both use dashes but differ in digit-group count, and range's
// stricter 4-digit/4-digit shape must be tried first; year-month comes after
// full date since full date has three components to year-month's two.
//
// Parse is pure: same input, same result, safe for concurrent use.
func Parse(input string) (Expr, error) {
	trimmed := strings.TrimSpace(input)

	if trimmed == "" {
		return nil, &ParseError{
			Kind:   KindEmptyInput,
			Field:  "input",
			Detail: "date input cannot be empty",
		}
	}

	if strings.Contains(trimmed, ",") {
		return parseList(trimmed)
	}

	if m := rangeRe.FindStringSubmatch(trimmed); m != nil {
		return parseRange(m[1], m[2])
	}

	if m := fullDateRe.FindStringSubmatch(trimmed); m != nil {
		return parseFullDate(m[1], m[2], m[3])
	}

	if m := yearMonthRe.FindStringSubmatch(trimmed); m != nil {
		return parseYearMonth(m)
	}

	if m := yearRe.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		if err := validateYear(year); err != nil {
			return nil, err
		}
		return Year{Value: year}, nil
	}

	return nil, &ParseError{
		Kind:    KindUnrecognizedFormat,
		Field:   "input",
		Value:   trimmed,
		Detail:  fmt.Sprintf("unrecognized date format %q", trimmed),
		Formats: SupportedFormats,
	}
}

// parseList handles comma-separated year lists. Each non-empty part must be
// a bare four-digit year; order is preserved, duplicates are rejected.
func parseList(input string) (Expr, error) {
	var years []int
	seen := make(map[int]bool)

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := yearRe.FindStringSubmatch(part)
		if m == nil {
			return nil, &ParseError{
				Kind:   KindInvalidListMember,
				Field:  "list member",
				Value:  part,
				Detail: fmt.Sprintf("invalid year in list: %q, each item must be a 4-digit year", part),
			}
		}

		year, _ := strconv.Atoi(m[1])
		if err := validateYear(year); err != nil {
			return nil, err
		}
		if seen[year] {
			return nil, &ParseError{
				Kind:   KindDuplicateInList,
				Field:  "list member",
				Value:  strconv.Itoa(year),
				Detail: fmt.Sprintf("duplicate year in list: %d", year),
			}
		}
		seen[year] = true
		years = append(years, year)
	}

	if len(years) == 0 {
		return nil, &ParseError{
			Kind:   KindEmptyList,
			Field:  "input",
			Value:  input,
			Detail: "no valid years found in list",
		}
	}

	return List{Years: years}, nil
}

func parseRange(startStr, endStr string) (Expr, error) {
	start, _ := strconv.Atoi(startStr)
	end, _ := strconv.Atoi(endStr)

	if err := validateYear(start); err != nil {
		return nil, err
	}
	if err := validateYear(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, &ParseError{
			Kind:   KindRangeStartAfterEnd,
			Field:  "range",
			Value:  fmt.Sprintf("%d-%d", start, end),
			Detail: fmt.Sprintf("invalid year range %d-%d: start year must not be after end year", start, end),
		}
	}
	if span := end - start + 1; span > MaxRangeSpan {
		return nil, &ParseError{
			Kind:   KindRangeTooLarge,
			Field:  "range",
			Value:  fmt.Sprintf("%d-%d", start, end),
			Detail: fmt.Sprintf("year range too large: %d years (%d-%d), maximum is %d", span, start, end, MaxRangeSpan),
		}
	}

	return Range{Start: start, End: end}, nil
}

func parseFullDate(yearStr, monthStr, dayStr string) (Expr, error) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	if err := validateYear(year); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if day < 1 || day > 31 {
		return nil, errDayOutOfRange(day)
	}

	// Generic bounds passed; now the day must exist in that actual month.
	if !calendar.ValidDate(year, month, day) {
		return nil, &ParseError{
			Kind:   KindInvalidCalendarDate,
			Field:  "date",
			Value:  fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			Detail: fmt.Sprintf("invalid date %04d-%02d-%02d: day does not exist in that month", year, month, day),
		}
	}

	return FullDate{Year: year, Month: month, Day: day}, nil
}

// parseYearMonth handles both submatch arms of yearMonthRe: groups 1-2 are
// the numeric YYYY-MM form, groups 3-4 are the "MonthName YYYY" form.
func parseYearMonth(m []string) (Expr, error) {
	if m[1] != "" {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if err := validateYear(year); err != nil {
			return nil, err
		}
		if err := validateMonth(month); err != nil {
			return nil, err
		}
		return YearMonth{Year: year, Month: month}, nil
	}

	month, ok := monthNames[strings.ToLower(m[3])]
	if !ok {
		return nil, &ParseError{
			Kind:   KindUnknownMonthName,
			Field:  "month",
			Value:  m[3],
			Detail: fmt.Sprintf("unknown month name %q, use Jan-Dec or full English month names", m[3]),
		}
	}
	year, _ := strconv.Atoi(m[4])
	if err := validateYear(year); err != nil {
		return nil, err
	}
	return YearMonth{Year: year, Month: month}, nil
}

func validateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return errYearOutOfRange(year)
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return errMonthOutOfRange(month)
	}
	return nil
}
