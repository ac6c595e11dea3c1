package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
)

func newTestCalculator(slack int) *Calculator {
	cfg := config.Config{}
	cfg.Calendar.IterationSlack = slack
	return NewCalculator(cfg, zap.NewNop())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddBusinessDays(t *testing.T) {
	calc := newTestCalculator(365)

	t.Run("plain weekdays", func(t *testing.T) {
		// Monday + 3 business days lands on Thursday.
		got := calc.AddBusinessDays(date(2026, time.January, 5), 3, nil)
		assert.Equal(t, date(2026, time.January, 8), got)
	})

	t.Run("weekends do not count", func(t *testing.T) {
		// Friday + 1 business day skips the weekend.
		got := calc.AddBusinessDays(date(2026, time.January, 9), 1, nil)
		assert.Equal(t, date(2026, time.January, 12), got)
	})

	t.Run("holidays do not count", func(t *testing.T) {
		holidays := make(HolidaySet)
		holidays.Add("2026-01-06")
		got := calc.AddBusinessDays(date(2026, time.January, 5), 1, holidays)
		assert.Equal(t, date(2026, time.January, 7), got)
	})

	t.Run("holiday adjoining a weekend", func(t *testing.T) {
		holidays := make(HolidaySet)
		holidays.Add("2026-01-12")
		// Friday + 1: Sat, Sun and the Monday holiday all skip.
		got := calc.AddBusinessDays(date(2026, time.January, 9), 1, holidays)
		assert.Equal(t, date(2026, time.January, 13), got)
	})

	t.Run("zero or negative days return start", func(t *testing.T) {
		start := date(2026, time.January, 5)
		assert.Equal(t, start, calc.AddBusinessDays(start, 0, nil))
		assert.Equal(t, start, calc.AddBusinessDays(start, -4, nil))
	})
}

func TestAddBusinessDaysIterationCap(t *testing.T) {
	calc := newTestCalculator(1)

	// Every candidate day inside the cap window is a holiday, so the bound
	// of days*5+slack = 6 iterations trips and the furthest date comes back.
	holidays := make(HolidaySet)
	for d := 6; d <= 11; d++ {
		holidays.Add(date(2026, time.January, d).Format("2006-01-02"))
	}

	got := calc.AddBusinessDays(date(2026, time.January, 5), 1, holidays)
	assert.Equal(t, date(2026, time.January, 11), got)
}

func TestHolidaySetMerge(t *testing.T) {
	a := make(HolidaySet)
	a.Add("2026-12-25")
	b := make(HolidaySet)
	b.Add("2027-01-01")

	a.Merge(b)

	assert.True(t, a.Contains(date(2026, time.December, 25)))
	assert.True(t, a.Contains(date(2027, time.January, 1)))
	assert.False(t, a.Contains(date(2026, time.December, 24)))
}
