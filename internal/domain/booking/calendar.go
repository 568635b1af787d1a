package booking

import (
	"sort"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/models"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

// CalendarInput is everything the bookable-date projection needs: the
// mentor's published slots, recurring weekly rules and blocked intervals
// for the requested month, and the mentor's configured location.
type CalendarInput struct {
	Year     int
	Month    time.Month
	Location *time.Location

	Slots   []models.AvailableSlot
	Rules   []models.AvailabilityRule
	Blocked []models.BlockedSlot
}

// Calendar is the read-only projection for one month. Dates are calendar
// days in the mentor's timezone, formatted 2006-01-02.
type Calendar struct {
	AvailableDates []string `json:"available_dates"`
	FreeDates      []string `json:"free_dates"`
}

// ProjectCalendar materializes each slot's date in the mentor's timezone,
// expands recurring weekly rules over the month's days, drops slot dates
// whose slot overlaps a blocked interval and rule dates whose window the
// blocks cover entirely, and separately reports which surviving dates carry
// a free slot. Pure: no clock, no writes.
func ProjectCalendar(in CalendarInput) Calendar {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	available := make(map[string]bool)
	free := make(map[string]bool)

	for _, slot := range in.Slots {
		if slot.Booked {
			continue
		}

		start := slot.StartsAt.In(loc)
		if start.Year() != in.Year || start.Month() != in.Month {
			continue
		}

		if overlapsBlocked(slot, in.Blocked) {
			continue
		}

		key := timezone.DateKey(slot.StartsAt, loc)
		available[key] = true
		if slot.IsFree {
			free[key] = true
		}
	}

	expandRules(in, loc, available)

	return Calendar{
		AvailableDates: sortedKeys(available),
		FreeDates:      sortedKeys(free),
	}
}

// expandRules walks the month's days in the mentor's timezone and marks the
// dates where an active rule's window still has uncovered time.
func expandRules(in CalendarInput, loc *time.Location, available map[string]bool) {
	if len(in.Rules) == 0 {
		return
	}

	monthStart := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, loc)
	for day := monthStart; day.Month() == in.Month; day = day.AddDate(0, 0, 1) {
		for _, rule := range in.Rules {
			if !rule.Active || int(day.Weekday()) != rule.Weekday {
				continue
			}

			start, ok := atClock(day, rule.StartTime, loc)
			if !ok {
				continue
			}
			end, ok := atClock(day, rule.EndTime, loc)
			if !ok || !end.After(start) {
				continue
			}

			if windowHasOpening(start, end, in.Blocked) {
				available[day.Format("2006-01-02")] = true
				break
			}
		}
	}
}

// windowHasOpening reports whether [start, end) is not entirely covered by
// the blocked intervals.
func windowHasOpening(start, end time.Time, blocked []models.BlockedSlot) bool {
	overlapping := make([]models.BlockedSlot, 0, len(blocked))
	for _, b := range blocked {
		if b.StartsAt.Before(end) && b.EndsAt.After(start) {
			overlapping = append(overlapping, b)
		}
	}
	sort.Slice(overlapping, func(i, j int) bool {
		return overlapping[i].StartsAt.Before(overlapping[j].StartsAt)
	})

	cursor := start
	for _, b := range overlapping {
		if b.StartsAt.After(cursor) {
			return true
		}
		if b.EndsAt.After(cursor) {
			cursor = b.EndsAt
		}
		if !cursor.Before(end) {
			return false
		}
	}
	return cursor.Before(end)
}

// atClock pins an HH:MM wall-clock time onto day's date in loc.
func atClock(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc,
	), true
}

func overlapsBlocked(slot models.AvailableSlot, blocked []models.BlockedSlot) bool {
	start := slot.StartsAt
	end := slot.EndsAt()

	for _, b := range blocked {
		if start.Before(b.EndsAt) && end.After(b.StartsAt) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
