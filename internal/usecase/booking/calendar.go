package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/mentorbase/mentor-marketplace/internal/cache"
	domain "github.com/mentorbase/mentor-marketplace/internal/domain/booking"
	"github.com/mentorbase/mentor-marketplace/internal/httperr"
	"github.com/mentorbase/mentor-marketplace/internal/timezone"
)

type AvailabilityCalendar struct {
	repo  domain.Repository
	cache *cache.CalendarCache
}

func NewAvailabilityCalendar(
	repo domain.Repository,
	calCache *cache.CalendarCache,
) *AvailabilityCalendar {
	return &AvailabilityCalendar{
		repo:  repo,
		cache: calCache,
	}
}

// Execute projects the bookable dates for one month in the mentor's
// configured timezone. Read-only; results are cached briefly.
func (uc *AvailabilityCalendar) Execute(
	ctx context.Context,
	mentorID uint,
	month string, // YYYY-MM
) (*domain.Calendar, error) {

	parsed, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	m, err := uc.repo.GetMentorByID(ctx, mentorID)
	if err != nil {
		return nil, httperr.ErrBusiness("mentor_not_found")
	}

	cacheKey := fmt.Sprintf("calendar:%d:%s", mentorID, month)
	if uc.cache != nil {
		var cached domain.Calendar
		if hit, err := uc.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	loc := timezone.Location(m.Timezone)
	monthStart := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	slots, err := uc.repo.ListAvailableSlots(ctx, mentorID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	blocked, err := uc.repo.ListBlockedSlots(ctx, mentorID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	rules, err := uc.repo.ListActiveRules(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	cal := domain.ProjectCalendar(domain.CalendarInput{
		Year:     parsed.Year(),
		Month:    parsed.Month(),
		Location: loc,
		Slots:    slots,
		Rules:    rules,
		Blocked:  blocked,
	})

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, cal)
	}

	return &cal, nil
}
