package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorbase/mentor-marketplace/internal/cache"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/models"
)

func TestAvailabilityCalendar_MentorLocalMonth(t *testing.T) {
	repo := newFakeRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, Timezone: "America/New_York"}

	// late-evening New York slot whose UTC instant is already June 16
	repo.slots = []models.AvailableSlot{
		{MentorID: 1, StartsAt: time.Date(2026, 6, 16, 1, 0, 0, 0, time.UTC), DurationMinutes: 60},
	}

	uc := NewAvailabilityCalendar(repo, cache.NewCalendarCache(nil, time.Minute))

	cal, err := uc.Execute(context.Background(), 1, "2026-06")
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-06-15"}, cal.AvailableDates)
}

func TestAvailabilityCalendar_BlockedDateDropped(t *testing.T) {
	repo := newFakeRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, Timezone: "UTC"}
	repo.slots = []models.AvailableSlot{
		{MentorID: 1, StartsAt: time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC), DurationMinutes: 60},
		{MentorID: 1, StartsAt: time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC), DurationMinutes: 60},
	}
	repo.blocked = []models.BlockedSlot{
		{
			MentorID: 1,
			StartsAt: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			EndsAt:   time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	uc := NewAvailabilityCalendar(repo, cache.NewCalendarCache(nil, time.Minute))

	cal, err := uc.Execute(context.Background(), 1, "2026-06")
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-06-12"}, cal.AvailableDates)
}

func TestAvailabilityCalendar_InvalidMonth(t *testing.T) {
	repo := newFakeRepo()
	uc := NewAvailabilityCalendar(repo, cache.NewCalendarCache(nil, time.Minute))

	_, err := uc.Execute(context.Background(), 1, "June 2026")
	assert.True(t, httperr.IsBusiness(err, "invalid_month"))
}

func TestAvailabilityCalendar_UnknownMentor(t *testing.T) {
	repo := newFakeRepo()
	uc := NewAvailabilityCalendar(repo, cache.NewCalendarCache(nil, time.Minute))

	_, err := uc.Execute(context.Background(), 7, "2026-06")
	assert.True(t, httperr.IsBusiness(err, "mentor_not_found"))
}

func TestAvailabilityCalendar_WeeklyRulesIncluded(t *testing.T) {
	repo := newFakeRepo()
	repo.mentors[1] = &models.Mentor{ID: 1, UserID: 10, Timezone: "UTC"}
	repo.rules = []models.AvailabilityRule{
		{MentorID: 1, Weekday: int(time.Monday), StartTime: "09:00", EndTime: "17:00", Active: true},
		{MentorID: 2, Weekday: int(time.Tuesday), StartTime: "09:00", EndTime: "17:00", Active: true},
	}

	uc := NewAvailabilityCalendar(repo, cache.NewCalendarCache(nil, time.Minute))

	cal, err := uc.Execute(context.Background(), 1, "2026-06")
	require.NoError(t, err)

	// only mentor 1's Monday rule contributes
	assert.Equal(t, []string{
		"2026-06-01", "2026-06-08", "2026-06-15", "2026-06-22", "2026-06-29",
	}, cal.AvailableDates)
}
