// Package scheduler provides timer-based job scheduling over a restricted
// 5-field cron subset, with a pluggable clock for deterministic tests.
package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedExpression is returned at schedule time for any cron
// expression outside the supported subset.
var ErrUnsupportedExpression = errors.New("unsupported cron expression")

// CronExpr is a parsed 5-field cron expression restricted to single
// literals or wildcards. Fields: minute, hour, day-of-month, month,
// day-of-week. A nil field means wildcard.
//
// Exactly three shapes are supported:
//   - minute and hour fixed, rest wildcard (daily at HH:MM)
//   - minute, hour and day-of-week fixed, rest wildcard (weekly)
//   - minute fixed, rest wildcard (hourly at :MM)
type CronExpr struct {
	Minute    *int
	Hour      *int
	Day       *int
	Month     *int
	DayOfWeek *int
}

// ParseCron parses and validates an expression against the supported subset.
func ParseCron(expr string) (*CronExpr, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: %q: expected 5 fields, got %d", ErrUnsupportedExpression, expr, len(fields))
	}

	minute, err := parseField(fields[0], 0, 59)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: minute: %v", ErrUnsupportedExpression, expr, err)
	}
	hour, err := parseField(fields[1], 0, 23)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: hour: %v", ErrUnsupportedExpression, expr, err)
	}
	day, err := parseField(fields[2], 1, 31)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: day-of-month: %v", ErrUnsupportedExpression, expr, err)
	}
	month, err := parseField(fields[3], 1, 12)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: month: %v", ErrUnsupportedExpression, expr, err)
	}
	dow, err := parseField(fields[4], 0, 6)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: day-of-week: %v", ErrUnsupportedExpression, expr, err)
	}

	c := &CronExpr{Minute: minute, Hour: hour, Day: day, Month: month, DayOfWeek: dow}
	if err := c.validateShape(); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedExpression, expr, err)
	}
	return c, nil
}

// validateShape rejects combinations outside the three supported patterns.
func (c *CronExpr) validateShape() error {
	if c.Day != nil || c.Month != nil {
		return errors.New("literal day-of-month and month are not supported")
	}
	if c.Minute == nil {
		return errors.New("minute must be a literal")
	}
	if c.Hour == nil && c.DayOfWeek != nil {
		return errors.New("day-of-week requires a literal hour")
	}
	return nil
}

// Next returns the next run time strictly after now.
func (c *CronExpr) Next(now time.Time) time.Time {
	switch {
	case c.Hour == nil:
		// Hourly at :MM.
		candidate := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), *c.Minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.Add(time.Hour)
		}
		return candidate

	case c.DayOfWeek == nil:
		// Daily at HH:MM, today or tomorrow.
		candidate := time.Date(now.Year(), now.Month(), now.Day(), *c.Hour, *c.Minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate

	default:
		// Weekly at HH:MM on a fixed weekday, rolling forward 7 days if
		// already passed.
		daysAhead := (*c.DayOfWeek - int(now.Weekday()) + 7) % 7
		candidate := time.Date(now.Year(), now.Month(), now.Day(), *c.Hour, *c.Minute, 0, 0, now.Location())
		candidate = candidate.AddDate(0, 0, daysAhead)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	}
}

// parseField accepts "*" or a single in-range integer literal.
func parseField(field string, min, max int) (*int, error) {
	if field == "*" {
		return nil, nil
	}
	val, err := strconv.Atoi(field)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", field)
	}
	if val < min || val > max {
		return nil, fmt.Errorf("value %d out of bounds [%d,%d]", val, min, max)
	}
	return &val, nil
}
