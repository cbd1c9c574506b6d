package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_ValidPairReturnedUnmodified(t *testing.T) {
	tests := []struct {
		start, end string
		want       DateRange
	}{
		{"2024-01-01", "2024-01-31", DateRange{date(2024, 1, 1), date(2024, 1, 31)}},
		{"2024-02-28", "2024-02-29", DateRange{date(2024, 2, 28), date(2024, 2, 29)}},
		{"2023-12-31", "2024-01-01", DateRange{date(2023, 12, 31), date(2024, 1, 1)}},
		{" 2024-05-01 ", "2024-06-01\t", DateRange{date(2024, 5, 1), date(2024, 6, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			got, err := Parse(tt.start, tt.end)
			require.NoError(t, err)
			assert.True(t, tt.want.Start.Equal(got.Start), "start = %v", got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end = %v", got.End)
			assert.True(t, got.Start.Before(got.End))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       error
	}{
		{"same day", "2024-01-01", "2024-01-01", ErrInvalidOrder},
		{"reversed", "2024-02-01", "2024-01-01", ErrInvalidOrder},
		{"bad start", "01/01/2024", "2024-01-31", ErrInvalidFormat},
		{"bad end", "2024-01-01", "2024-13-01", ErrInvalidFormat},
		{"empty", "", "", ErrInvalidFormat},
		{"not a leap year", "2023-02-29", "2023-03-01", ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.start, tt.end)
			assert.True(t, errors.Is(err, tt.want), "Parse() error = %v, want %v", err, tt.want)
		})
	}
}

func TestNew_TruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	r, err := New(time.Date(2024, 1, 1, 22, 30, 0, 0, loc), date(2024, 1, 5))
	require.NoError(t, err)

	// 22:30 at UTC-3 is already the 2nd in UTC
	assert.Equal(t, date(2024, 1, 2), r.Start)
	assert.Equal(t, 3, r.Days())
	assert.Equal(t, "2024-01-02..2024-01-05", r.String())
}

func TestRelative(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name         string
		days, offset int
		wantStart    time.Time
		wantEnd      time.Time
	}{
		{"last 7 days", 7, 0, date(2024, 3, 3), date(2024, 3, 10)},
		{"yesterday only", 1, 1, date(2024, 3, 8), date(2024, 3, 9)},
		{"crosses leap day", 30, 0, date(2024, 2, 9), date(2024, 3, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Relative(now, tt.days, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
			assert.Equal(t, tt.days, r.Days())
		})
	}
}

func TestRelative_Errors(t *testing.T) {
	now := date(2024, 3, 10)

	_, err := Relative(now, 0, 0)
	assert.Error(t, err)

	_, err = Relative(now, 3, -1)
	assert.Error(t, err)
}
