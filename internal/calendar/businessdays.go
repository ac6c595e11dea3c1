// Package calendar computes delivery dates in business days, skipping
// weekends and externally supplied public holidays.
package calendar

import (
	"time"

	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
)

// HolidaySet holds non-working dates keyed by their ISO (YYYY-MM-DD) form.
type HolidaySet map[string]struct{}

// Contains reports whether the date falls on a known holiday.
func (h HolidaySet) Contains(t time.Time) bool {
	_, ok := h[t.Format("2006-01-02")]
	return ok
}

// Add marks a date as a holiday.
func (h HolidaySet) Add(date string) {
	h[date] = struct{}{}
}

// Merge folds another set into this one.
func (h HolidaySet) Merge(other HolidaySet) {
	for k := range other {
		h[k] = struct{}{}
	}
}

// Calculator advances dates by business days. The iteration bound is
// days*5 + slack; slack is configurable because the formula is a safety
// valve, not a proven bound.
type Calculator struct {
	logger *zap.Logger
	slack  int
}

// NewCalculator builds a Calculator from configuration.
func NewCalculator(cfg config.Config, logger *zap.Logger) *Calculator {
	slack := cfg.Calendar.IterationSlack
	if slack <= 0 {
		slack = 365
	}
	return &Calculator{logger: logger, slack: slack}
}

// AddBusinessDays returns the date reached after counting the given number
// of business days from start. Saturdays, Sundays and holiday dates do not
// count. days <= 0 returns start unchanged. If the iteration cap is hit the
// furthest date reached is returned and a warning is logged; the calculator
// never fails.
func (c *Calculator) AddBusinessDays(start time.Time, days int, holidays HolidaySet) time.Time {
	if days <= 0 {
		return start
	}

	limit := days*5 + c.slack
	date := start
	counted := 0
	for iter := 0; counted < days; iter++ {
		if iter >= limit {
			if c.logger != nil {
				c.logger.Warn("business-day iteration cap reached",
					zap.Time("start", start),
					zap.Int("days", days),
					zap.Int("limit", limit),
					zap.Time("reached", date),
				)
			}
			return date
		}
		date = date.AddDate(0, 0, 1)
		if isWeekend(date) || holidays.Contains(date) {
			continue
		}
		counted++
	}
	return date
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
