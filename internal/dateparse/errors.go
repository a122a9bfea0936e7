package dateparse

import (
	"errors"
	"fmt"
)

// Kind discriminates parse failures so callers can branch without string
// matching. Every failure from Parse is a *ParseError carrying one of these.
type Kind int

const (
	KindEmptyInput Kind = iota
	KindUnrecognizedFormat
	KindYearOutOfRange
	KindMonthOutOfRange
	KindDayOutOfRange
	KindInvalidCalendarDate
	KindRangeStartAfterEnd
	KindRangeTooLarge
	KindDuplicateInList
	KindEmptyList
	KindInvalidListMember
	KindUnknownMonthName
)

// String returns a stable identifier for the kind, used in messages and logs.
func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty_input"
	case KindUnrecognizedFormat:
		return "unrecognized_format"
	case KindYearOutOfRange:
		return "year_out_of_range"
	case KindMonthOutOfRange:
		return "month_out_of_range"
	case KindDayOutOfRange:
		return "day_out_of_range"
	case KindInvalidCalendarDate:
		return "invalid_calendar_date"
	case KindRangeStartAfterEnd:
		return "range_start_after_end"
	case KindRangeTooLarge:
		return "range_too_large"
	case KindDuplicateInList:
		return "duplicate_in_list"
	case KindEmptyList:
		return "empty_list"
	case KindInvalidListMember:
		return "invalid_list_member"
	case KindUnknownMonthName:
		return "unknown_month_name"
	default:
		return "unknown"
	}
}

// SupportedFormats describes the five accepted input shapes. It rides along
// on unrecognized-format errors so the presentation layer can show actionable
// guidance without re-deriving it.
var SupportedFormats = []string{
	"Single year: 1990",
	"Year and month: 1990-01 or Jan 1990",
	"Full date: 1990-01-01",
	"Year range: 1990-1995",
	"Year list: 1990,1992,1994",
}

// ParseError is the structured failure type returned by Parse. Field and
// Value name the offending input component; Formats is populated only for
// KindUnrecognizedFormat.
type ParseError struct {
	Kind    Kind
	Field   string
	Value   string
	Detail  string
	Formats []string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s %q", e.Kind, e.Field, e.Value)
}

// Is lets errors.Is match two ParseErrors by kind alone, so tests and callers
// can write errors.Is(err, &ParseError{Kind: KindYearOutOfRange}).
func (e *ParseError) Is(target error) bool {
	var pe *ParseError
	if !errors.As(target, &pe) {
		return false
	}
	return e.Kind == pe.Kind
}

// IsKind reports whether err is a *ParseError of the given kind.
func IsKind(err error, k Kind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == k
}

func errYearOutOfRange(year int) *ParseError {
	return &ParseError{
		Kind:   KindYearOutOfRange,
		Field:  "year",
		Value:  fmt.Sprintf("%d", year),
		Detail: fmt.Sprintf("year %d is out of range, supported years: %d-%d", year, MinYear, MaxYear),
	}
}

func errMonthOutOfRange(month int) *ParseError {
	return &ParseError{
		Kind:   KindMonthOutOfRange,
		Field:  "month",
		Value:  fmt.Sprintf("%d", month),
		Detail: fmt.Sprintf("month %d is invalid, months must be between 1 and 12", month),
	}
}

func errDayOutOfRange(day int) *ParseError {
	return &ParseError{
		Kind:   KindDayOutOfRange,
		Field:  "day",
		Value:  fmt.Sprintf("%d", day),
		Detail: fmt.Sprintf("day %d is invalid, days must be between 1 and 31", day),
	}
}
