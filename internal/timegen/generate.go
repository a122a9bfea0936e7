package timegen

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"chronogit/internal/calendar"
	"chronogit/internal/dateparse"
)

// Commits emitted per expression variant. The spreads below are tuned to
// these counts; change one and the other must follow.
const (
	commitsPerYear  = 4
	commitsPerMonth = 2
)

// ErrInvariant is returned when generation hits an impossible calendar
// construction. Expressions reaching the generator are already validated by
// dateparse, so observing this error means a bug, not bad user input.
var ErrInvariant = errors.New("timegen: calendar invariant violated")

// Generate expands expr into UTC timestamps under cfg. Output is
// deterministic: every timestamp has minute and second zero, hours follow the
// per-variant spread formulas, and the sequence is sorted ascending when
// cfg.ChronologicalOrder is set (otherwise it stays in generation order,
// which for lists is the user's typed year order).
func Generate(expr dateparse.Expr, cfg Config) ([]time.Time, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var stamps []time.Time
	var err error

	switch e := expr.(type) {
	case dateparse.Year:
		stamps, err = yearTimestamps(e.Value, cfg)
	case dateparse.YearMonth:
		stamps, err = monthTimestamps(e.Year, e.Month, cfg)
	case dateparse.FullDate:
		stamps, err = singleTimestamp(e, cfg)
	case dateparse.Range:
		for y := e.Start; y <= e.End; y++ {
			var ts []time.Time
			ts, err = yearTimestamps(y, cfg)
			if err != nil {
				break
			}
			stamps = append(stamps, ts...)
		}
	case dateparse.List:
		for _, y := range e.Years {
			var ts []time.Time
			ts, err = yearTimestamps(y, cfg)
			if err != nil {
				break
			}
			stamps = append(stamps, ts...)
		}
	default:
		err = fmt.Errorf("%w: unsupported expression type %T", ErrInvariant, expr)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ChronologicalOrder {
		sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	}

	return stamps, nil
}

// yearTimestamps spreads commitsPerYear commits across the year: day offsets
// land at successive fifths of the year, hours walk a 9am-9pm window when
// distribution is on.
func yearTimestamps(year int, cfg Config) ([]time.Time, error) {
	days := calendar.DaysInYear(year)
	stamps := make([]time.Time, 0, commitsPerYear)

	for i := 0; i < commitsPerYear; i++ {
		offset := (days / (commitsPerYear + 1)) * (i + 1)
		if offset > days-1 {
			offset = days - 1
		}

		hour := cfg.DefaultHour
		if cfg.DistributeTimes {
			hour = 9 + (i*3)%13
		}

		date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		stamps = append(stamps, at(date, hour))
	}

	return stamps, nil
}

// monthTimestamps places commitsPerMonth commits at successive thirds of the
// month, nudging the hour by two per commit when distribution is on.
func monthTimestamps(year, month int, cfg Config) ([]time.Time, error) {
	days, err := calendar.DaysInMonth(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	stamps := make([]time.Time, 0, commitsPerMonth)
	for i := 0; i < commitsPerMonth; i++ {
		day := (days / (commitsPerMonth + 1)) * (i + 1)
		if day < 1 {
			day = 1
		}

		hour := cfg.DefaultHour
		if cfg.DistributeTimes {
			hour = cfg.DefaultHour + (i*2)%8
		}

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		stamps = append(stamps, at(date, hour))
	}

	return stamps, nil
}

func singleTimestamp(d dateparse.FullDate, cfg Config) ([]time.Time, error) {
	if !calendar.ValidDate(d.Year, d.Month, d.Day) {
		return nil, fmt.Errorf("%w: date %s does not exist", ErrInvariant, d)
	}
	date := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return []time.Time{at(date, cfg.DefaultHour)}, nil
}

// at places a timestamp on date at the given hour, clamping the hour to 23.
// The spread formulas cannot exceed 23 by construction, but the contract is
// to never produce an invalid time even if they ever could.
func at(date time.Time, hour int) time.Time {
	if hour > 23 {
		hour = 23
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
}
