package calendar

import "testing"

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2000, true},  // divisible by 400
		{1900, false}, // divisible by 100 but not 400
		{2004, true},  // divisible by 4 but not 100
		{2001, false}, // not divisible by 4
		{1970, false},
		{2024, true},
	}
	for _, c := range cases {
		if got := IsLeapYear(c.year); got != c.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestDaysInYear(t *testing.T) {
	if got := DaysInYear(2000); got != 366 {
		t.Errorf("DaysInYear(2000) = %d, want 366", got)
	}
	if got := DaysInYear(2001); got != 365 {
		t.Errorf("DaysInYear(2001) = %d, want 365", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month int
		want        int
	}{
		{2000, 1, 31},
		{2000, 2, 29}, // leap February
		{2001, 2, 28},
		{2000, 4, 30},
		{1990, 12, 31},
		{1990, 9, 30},
	}
	for _, c := range cases {
		got, err := DaysInMonth(c.year, c.month)
		if err != nil {
			t.Fatalf("DaysInMonth(%d, %d) returned error: %v", c.year, c.month, err)
		}
		if got != c.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}

	if _, err := DaysInMonth(2000, 13); err == nil {
		t.Error("DaysInMonth(2000, 13) should return an error")
	}
	if _, err := DaysInMonth(2000, 0); err == nil {
		t.Error("DaysInMonth(2000, 0) should return an error")
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate(2000, 2, 29) {
		t.Error("2000-02-29 should be valid (leap year)")
	}
	if ValidDate(1990, 2, 30) {
		t.Error("1990-02-30 should be invalid")
	}
	if ValidDate(1990, 4, 31) {
		t.Error("1990-04-31 should be invalid")
	}
	if ValidDate(1990, 13, 1) {
		t.Error("month 13 should be invalid")
	}
	if ValidDate(1990, 1, 0) {
		t.Error("day 0 should be invalid")
	}
}
