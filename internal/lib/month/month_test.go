package month

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths_TableTests(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{
			name:   "simple one month",
			start:  date(2024, 3, 15),
			months: 1,
			want:   date(2024, 4, 15),
		},
		{
			name:   "jan 31 plus one month in leap year",
			start:  date(2024, 1, 31),
			months: 1,
			want:   date(2024, 2, 29),
		},
		{
			name:   "jan 31 plus one month in common year",
			start:  date(2023, 1, 31),
			months: 1,
			want:   date(2023, 2, 28),
		},
		{
			name:   "aug 31 plus three months",
			start:  date(2024, 8, 31),
			months: 3,
			want:   date(2024, 11, 30),
		},
		{
			name:   "year transition",
			start:  date(2024, 11, 20),
			months: 6,
			want:   date(2025, 5, 20),
		},
		{
			name:   "twelve months from leap day",
			start:  date(2024, 2, 29),
			months: 12,
			want:   date(2025, 2, 28),
		},
		{
			name:   "zero months",
			start:  date(2024, 5, 31),
			months: 0,
			want:   date(2024, 5, 31),
		},
		{
			name:   "mar 31 plus six months",
			start:  date(2025, 3, 31),
			months: 6,
			want:   date(2025, 9, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestAddMonths_KeepsClock(t *testing.T) {
	start := time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC)
	got := AddMonths(start, 1)
	want := time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddMonths() = %v, want %v", got, want)
	}
}

func TestDaysIn(t *testing.T) {
	if got := DaysIn(2024, time.February); got != 29 {
		t.Errorf("DaysIn(2024, Feb) = %d, want 29", got)
	}
	if got := DaysIn(2023, time.February); got != 28 {
		t.Errorf("DaysIn(2023, Feb) = %d, want 28", got)
	}
	if got := DaysIn(2024, time.December); got != 31 {
		t.Errorf("DaysIn(2024, Dec) = %d, want 31", got)
	}
}
