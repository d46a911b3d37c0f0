package listview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateWindow_Today(t *testing.T) {
	w := DateWindow{Mode: WindowToday}
	today := time.Date(refNow.Year(), refNow.Month(), refNow.Day(), 0, 0, 0, 0, time.UTC)

	assert.True(t, w.Contains(refNow, refNow), "record dated exactly now")
	assert.True(t, w.Contains(today, refNow), "midnight today")
	assert.True(t, w.Contains(today.Add(23*time.Hour+59*time.Minute), refNow), "later today")
	assert.False(t, w.Contains(today.Add(-time.Second), refNow), "yesterday 23:59:59")
	assert.False(t, w.Contains(today.AddDate(0, 0, 1), refNow), "tomorrow")
	assert.True(t, w.Contains(today.AddDate(0, 0, 1).Add(-500*time.Microsecond), refNow), "last sub-millisecond of today")
	assert.True(t, w.Contains(today.Add(22*time.Hour).In(time.FixedZone("UTC+2", 2*3600)), refNow), "same instant in another zone")
}

func TestDateWindow_Last7Days(t *testing.T) {
	w := DateWindow{Mode: WindowLast7Days}
	lower := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, w.Contains(lower, refNow), "lower bound is inclusive")
	assert.False(t, w.Contains(lower.Add(-time.Millisecond), refNow))
	assert.True(t, w.Contains(refNow, refNow))
	assert.False(t, w.Contains(refNow.Add(time.Second), refNow), "future is outside")
}

func TestDateWindow_ThisMonth(t *testing.T) {
	w := DateWindow{Mode: WindowThisMonth}

	assert.True(t, w.Contains(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), refNow))
	assert.False(t, w.Contains(time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC), refNow))
}

func TestDateWindow_SpecificMonth(t *testing.T) {
	w := DateWindow{Mode: WindowMonth, Month: time.February, Year: 2024}

	start, end, ok := w.Bounds(refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, 999999999, time.UTC), end)

	assert.True(t, w.Contains(time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC), refNow))
	assert.False(t, w.Contains(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), refNow))

	t.Run("missing month leaves the window inactive", func(t *testing.T) {
		w := DateWindow{Mode: WindowMonth}
		assert.False(t, w.Active())
		assert.True(t, w.Contains(time.Time{}, refNow))
	})

	t.Run("missing year defaults to the current one", func(t *testing.T) {
		w := DateWindow{Mode: WindowMonth, Month: time.January}
		assert.True(t, w.Contains(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), refNow))
		assert.False(t, w.Contains(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), refNow))
	})
}

func TestDateWindow_SpecificYear(t *testing.T) {
	w := DateWindow{Mode: WindowYear, Year: 2025}

	assert.True(t, w.Contains(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), refNow))
	assert.True(t, w.Contains(time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC), refNow))
	assert.False(t, w.Contains(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), refNow))
}

func TestDateWindow_Custom(t *testing.T) {
	w := DateWindow{
		Mode:  WindowCustom,
		Start: time.Date(2026, time.March, 2, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), refNow), "start day from midnight")
	assert.True(t, w.Contains(time.Date(2026, time.March, 5, 23, 59, 59, 0, time.UTC), refNow), "end day until its last instant")
	assert.False(t, w.Contains(time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), refNow))
	assert.False(t, w.Contains(time.Date(2026, time.March, 1, 23, 59, 59, 0, time.UTC), refNow))

	t.Run("open ended", func(t *testing.T) {
		w := DateWindow{Mode: WindowCustom, Start: time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)}
		assert.True(t, w.Contains(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), refNow))
	})
}

func TestDateWindow_ZeroDateNeverMatches(t *testing.T) {
	w := DateWindow{Mode: WindowYear}
	assert.False(t, w.Contains(time.Time{}, refNow))
}

func TestParseWindowMode(t *testing.T) {
	mode, err := ParseWindowMode(" Today ")
	require.NoError(t, err)
	assert.Equal(t, WindowToday, mode)

	_, err = ParseWindowMode("fortnight")
	assert.Error(t, err)
}
