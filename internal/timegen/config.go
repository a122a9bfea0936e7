// Package timegen deterministically expands a canonical date expression into
// an ordered sequence of UTC commit timestamps. Given the same expression and
// configuration it always produces byte-identical output, which is what lets
// the CLI show a dry-run preview and later execute exactly what it previewed.
package timegen

import "fmt"

// Config controls how timestamps are generated. Values are supplied per
// invocation; the generator holds no state of its own.
type Config struct {
	// DefaultHour is the hour of day (0-23) used when distribution is
	// disabled or not applicable to the variant.
	DefaultHour int

	// DistributeTimes varies the hour across generated timestamps instead
	// of using DefaultHour for every one.
	DistributeTimes bool

	// ChronologicalOrder sorts the final sequence ascending.
	ChronologicalOrder bool
}

// DefaultConfig returns the documented defaults: 6 PM commits, distributed
// hours, chronological output.
func DefaultConfig() Config {
	return Config{
		DefaultHour:        18,
		DistributeTimes:    true,
		ChronologicalOrder: true,
	}
}

// Validate checks that DefaultHour is a real hour of day.
func (c Config) Validate() error {
	if c.DefaultHour < 0 || c.DefaultHour > 23 {
		return fmt.Errorf("default hour %d out of range, must be 0-23", c.DefaultHour)
	}
	return nil
}
