package timegen

import (
	"errors"
	"testing"
	"time"

	"chronogit/internal/dateparse"
)

func TestGenerate_Year(t *testing.T) {
	stamps, err := Generate(dateparse.Year{Value: 1990}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 4 {
		t.Fatalf("expected 4 timestamps for a year, got %d", len(stamps))
	}

	for _, ts := range stamps {
		if ts.Year() != 1990 {
			t.Errorf("timestamp %v not in 1990", ts)
		}
		if ts.Minute() != 0 || ts.Second() != 0 {
			t.Errorf("timestamp %v should have zero minute and second", ts)
		}
		if ts.Location() != time.UTC {
			t.Errorf("timestamp %v not UTC", ts)
		}
	}

	for i := 1; i < len(stamps); i++ {
		if stamps[i].Before(stamps[i-1]) {
			t.Errorf("timestamps out of order: %v before %v", stamps[i], stamps[i-1])
		}
	}
}

func TestGenerate_YearExactDays(t *testing.T) {
	// 1990 has 365 days: offsets are 73, 146, 219, 292 from Jan 1.
	cfg := Config{DefaultHour: 18, DistributeTimes: false, ChronologicalOrder: true}
	stamps, err := Generate(dateparse.Year{Value: 1990}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	jan1 := time.Date(1990, time.January, 1, 18, 0, 0, 0, time.UTC)
	wantOffsets := []int{73, 146, 219, 292}
	for i, off := range wantOffsets {
		want := jan1.AddDate(0, 0, off)
		if !stamps[i].Equal(want) {
			t.Errorf("stamp[%d] = %v, want %v", i, stamps[i], want)
		}
	}
}

func TestGenerate_YearDistributedHours(t *testing.T) {
	stamps, err := Generate(dateparse.Year{Value: 1990}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Spread formula: hour = 9 + (i*3) % 13 for i in 0..3.
	wantHours := map[int]bool{9: true, 12: true, 15: true, 18: true}
	seen := make(map[int]bool)
	for _, ts := range stamps {
		if !wantHours[ts.Hour()] {
			t.Errorf("unexpected hour %d, want one of 9/12/15/18", ts.Hour())
		}
		seen[ts.Hour()] = true
	}
	if len(seen) < 2 {
		t.Error("distribution enabled should yield at least two distinct hours")
	}
}

func TestGenerate_YearFixedHour(t *testing.T) {
	cfg := Config{DefaultHour: 7, DistributeTimes: false, ChronologicalOrder: true}
	stamps, err := Generate(dateparse.Year{Value: 1990}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, ts := range stamps {
		if ts.Hour() != 7 {
			t.Errorf("expected fixed hour 7, got %d", ts.Hour())
		}
	}
}

func TestGenerate_LeapYearOffsets(t *testing.T) {
	// 2000 has 366 days: offsets are 73*... = 366/5=73 -> 73,146,219,292.
	cfg := Config{DefaultHour: 18, DistributeTimes: false, ChronologicalOrder: true}
	stamps, err := Generate(dateparse.Year{Value: 2000}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 4 {
		t.Fatalf("expected 4 timestamps, got %d", len(stamps))
	}
	for _, ts := range stamps {
		if ts.Year() != 2000 {
			t.Errorf("timestamp %v escaped the year", ts)
		}
	}
}

func TestGenerate_YearMonth(t *testing.T) {
	stamps, err := Generate(dateparse.YearMonth{Year: 1990, Month: 6}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 2 {
		t.Fatalf("expected 2 timestamps for a month, got %d", len(stamps))
	}
	for _, ts := range stamps {
		if ts.Year() != 1990 || ts.Month() != time.June {
			t.Errorf("timestamp %v not in June 1990", ts)
		}
	}

	// June has 30 days: days are 30/3*1=10 and 30/3*2=20.
	if stamps[0].Day() != 10 || stamps[1].Day() != 20 {
		t.Errorf("expected days 10 and 20, got %d and %d", stamps[0].Day(), stamps[1].Day())
	}

	// Hour spread: default + (i*2) % 8 -> 18 and 20.
	if stamps[0].Hour() != 18 || stamps[1].Hour() != 20 {
		t.Errorf("expected hours 18 and 20, got %d and %d", stamps[0].Hour(), stamps[1].Hour())
	}
}

func TestGenerate_YearMonth_February(t *testing.T) {
	// Leap February: 29/3*1=9, 29/3*2=18. Non-leap: 28/3*1=9, 28/3*2=18.
	stamps, err := Generate(dateparse.YearMonth{Year: 2000, Month: 2}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, ts := range stamps {
		if ts.Month() != time.February {
			t.Errorf("timestamp %v escaped February", ts)
		}
	}
}

func TestGenerate_YearMonth_HourClamp(t *testing.T) {
	// DefaultHour 23 with distribution gives 23 and 25; the second must
	// clamp to 23 instead of overflowing into the next day.
	cfg := Config{DefaultHour: 23, DistributeTimes: true, ChronologicalOrder: true}
	stamps, err := Generate(dateparse.YearMonth{Year: 1990, Month: 6}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, ts := range stamps {
		if ts.Hour() > 23 {
			t.Errorf("hour %d exceeds 23", ts.Hour())
		}
		if ts.Month() != time.June {
			t.Errorf("clamping must not roll into another day: %v", ts)
		}
	}
}

func TestGenerate_FullDate(t *testing.T) {
	cfg := Config{DefaultHour: 18, DistributeTimes: true, ChronologicalOrder: true}
	stamps, err := Generate(dateparse.FullDate{Year: 1990, Month: 1, Day: 1}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 1 {
		t.Fatalf("expected exactly 1 timestamp, got %d", len(stamps))
	}
	want := time.Date(1990, time.January, 1, 18, 0, 0, 0, time.UTC)
	if !stamps[0].Equal(want) {
		t.Errorf("got %v, want %v", stamps[0], want)
	}
}

func TestGenerate_Range(t *testing.T) {
	stamps, err := Generate(dateparse.Range{Start: 1990, End: 1992}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 12 {
		t.Fatalf("expected 12 timestamps (4 per year over 3 years), got %d", len(stamps))
	}
	if stamps[0].Year() != 1990 {
		t.Errorf("first timestamp year = %d, want 1990", stamps[0].Year())
	}
	if stamps[len(stamps)-1].Year() != 1992 {
		t.Errorf("last timestamp year = %d, want 1992", stamps[len(stamps)-1].Year())
	}
	for i := 1; i < len(stamps); i++ {
		if stamps[i].Before(stamps[i-1]) {
			t.Errorf("range output not ascending at index %d", i)
		}
	}
}

func TestGenerate_List(t *testing.T) {
	stamps, err := Generate(dateparse.List{Years: []int{1990, 1995}}, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 8 {
		t.Fatalf("expected 8 timestamps (4 per year over 2 years), got %d", len(stamps))
	}

	years := make(map[int]int)
	for _, ts := range stamps {
		years[ts.Year()]++
	}
	if years[1990] != 4 || years[1995] != 4 {
		t.Errorf("expected 4 stamps in each of 1990 and 1995, got %v", years)
	}
}

func TestGenerate_ListOrder(t *testing.T) {
	// Without chronological ordering, list output keeps the user's year
	// order; with it, the sequence is sorted regardless.
	cfg := Config{DefaultHour: 18, DistributeTimes: false, ChronologicalOrder: false}
	stamps, err := Generate(dateparse.List{Years: []int{1995, 1990}}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if stamps[0].Year() != 1995 || stamps[len(stamps)-1].Year() != 1990 {
		t.Errorf("unsorted list output should follow list order, got %v .. %v",
			stamps[0], stamps[len(stamps)-1])
	}

	cfg.ChronologicalOrder = true
	stamps, err = Generate(dateparse.List{Years: []int{1995, 1990}}, cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if stamps[0].Year() != 1990 || stamps[len(stamps)-1].Year() != 1995 {
		t.Errorf("sorted list output should be ascending, got %v .. %v",
			stamps[0], stamps[len(stamps)-1])
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	exprs := []dateparse.Expr{
		dateparse.Year{Value: 1990},
		dateparse.YearMonth{Year: 2000, Month: 2},
		dateparse.FullDate{Year: 1999, Month: 12, Day: 31},
		dateparse.Range{Start: 1990, End: 1994},
		dateparse.List{Years: []int{2010, 1970, 1999}},
	}

	for _, expr := range exprs {
		a, err := Generate(expr, cfg)
		if err != nil {
			t.Fatalf("Generate(%v) failed: %v", expr, err)
		}
		b, err := Generate(expr, cfg)
		if err != nil {
			t.Fatalf("Generate(%v) second call failed: %v", expr, err)
		}
		if len(a) != len(b) {
			t.Fatalf("Generate(%v) not deterministic: %d vs %d stamps", expr, len(a), len(b))
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				t.Errorf("Generate(%v) not deterministic at %d: %v vs %v", expr, i, a[i], b[i])
			}
		}
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := Config{DefaultHour: 24}
	if _, err := Generate(dateparse.Year{Value: 1990}, cfg); err == nil {
		t.Error("expected error for hour 24")
	}
	cfg = Config{DefaultHour: -1}
	if _, err := Generate(dateparse.Year{Value: 1990}, cfg); err == nil {
		t.Error("expected error for negative hour")
	}
}

func TestGenerate_InvariantViolation(t *testing.T) {
	// A FullDate that bypassed the parser's validation is a bug, reported
	// as ErrInvariant rather than a user error.
	_, err := Generate(dateparse.FullDate{Year: 1990, Month: 2, Day: 30}, DefaultConfig())
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant, got %v", err)
	}
}

func TestGenerate_ParsePipeline(t *testing.T) {
	// End to end: parse then generate, the way the CLI drives it.
	expr, err := dateparse.Parse("1990-1992")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	stamps, err := Generate(expr, DefaultConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(stamps) != 12 {
		t.Errorf("expected 12 stamps from parsed range, got %d", len(stamps))
	}
}
