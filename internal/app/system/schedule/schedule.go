// Package schedule decides which days a pickup can be booked for.
//
// Sundays are always closed. US federal holidays (actual and observed) are
// closed unless the calendar is built without them. Dates are compared as
// calendar days in the configured location, so "today" is bookable.
package schedule

import (
	"errors"
	"strings"
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// DateLayout is the wire format of a pickup date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by ParseDate for values that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Calendar answers open/closed questions for pickup dates.
type Calendar struct {
	loc      *time.Location
	holidays *cal.BusinessCalendar // nil when holidays are not observed
}

// New creates a Calendar for loc. A nil loc means UTC.
func New(loc *time.Location, closedOnHolidays bool) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &Calendar{loc: loc}
	if closedOnHolidays {
		bc := cal.NewBusinessCalendar()
		bc.AddHoliday(
			us.NewYear,
			us.MlkDay,
			us.PresidentsDay,
			us.MemorialDay,
			us.Juneteenth,
			us.IndependenceDay,
			us.LaborDay,
			us.ColumbusDay,
			us.VeteransDay,
			us.ThanksgivingDay,
			us.ChristmasDay,
		)
		c.holidays = bc
	}
	return c
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ParseDate parses a YYYY-MM-DD value as midnight in the calendar's location.
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ClosedReason returns why d is closed, or "" when it is open.
func (c *Calendar) ClosedReason(d time.Time) string {
	d = d.In(c.loc)
	if d.Weekday() == time.Sunday {
		return "Pickups are not available on Sundays."
	}
	if c.holidays != nil {
		actual, observed, h := c.holidays.IsHoliday(d)
		if actual || observed {
			name := "a holiday"
			if h != nil && h.Name != "" {
				name = h.Name
			}
			return "Pickups are not available on " + name + "."
		}
	}
	return ""
}

// IsOpen reports whether pickups run on d.
func (c *Calendar) IsOpen(d time.Time) bool {
	return c.ClosedReason(d) == ""
}

// Selectable reports whether d is today or later (relative to now) and open.
func (c *Calendar) Selectable(d, now time.Time) bool {
	return !c.dayOf(d).Before(c.dayOf(now)) && c.IsOpen(d)
}

// NextOpenDays returns the first n open days starting today.
func (c *Calendar) NextOpenDays(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	d := c.dayOf(now)
	// A year of lookahead is far more than any run of closed days.
	for i := 0; i < 366 && len(days) < n; i++ {
		if c.IsOpen(d) {
			days = append(days, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return days
}

func (c *Calendar) dayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}
