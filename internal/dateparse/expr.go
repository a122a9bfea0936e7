// Package dateparse classifies free-form date expressions into a closed set
// of canonical variants and validates them. It is the first stage of the
// timestamp pipeline: a raw string goes in, a calendar-validated Expr comes
// out, and the generator in internal/timegen expands that Expr into concrete
// UTC timestamps.
//
// Accepted shapes:
//
//	1990            single year
//	1990-01         year and month
//	Jan 1990        month name and year
//	1990-01-01      full date
//	1990-1995       inclusive year range
//	1990,1992,1994  list of years
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is the canonical, validated representation of a parsed date
// expression. It is a sealed interface: exactly five variants exist, and the
// generator switches over them exhaustively. Every Expr produced by Parse
// satisfies the package invariants (years in [1970,2030], months in [1,12],
// real calendar days, ordered bounded ranges, duplicate-free non-empty lists).
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Year is a single four-digit year, e.g. "1990".
type Year struct {
	Value int
}

// YearMonth is a year plus a 1-12 month with no day, e.g. "1990-01" or
// "Jan 1990".
type YearMonth struct {
	Year  int
	Month int
}

// FullDate is a calendar-validated year/month/day triple, e.g. "1990-01-01".
type FullDate struct {
	Year  int
	Month int
	Day   int
}

// Range is an inclusive year interval with Start <= End and a span of at
// most MaxRangeSpan years.
type Range struct {
	Start int
	End   int
}

// List is an ordered, duplicate-free sequence of years. Order is the order
// the user typed, not sorted.
type List struct {
	Years []int
}

func (Year) isExpr()      {}
func (YearMonth) isExpr() {}
func (FullDate) isExpr()  {}
func (Range) isExpr()     {}
func (List) isExpr()      {}

func (e Year) String() string { return strconv.Itoa(e.Value) }

func (e YearMonth) String() string { return fmt.Sprintf("%04d-%02d", e.Year, e.Month) }

func (e FullDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", e.Year, e.Month, e.Day)
}

func (e Range) String() string { return fmt.Sprintf("%d-%d", e.Start, e.End) }

func (e List) String() string {
	parts := make([]string, len(e.Years))
	for i, y := range e.Years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
