package mentor

import "github.com/mentorbase/mentor-marketplace/internal/models"

// Onboarding steps, in order.
const (
	StepApply          = "apply"
	StepAwaitReview    = "await_review"
	StepSetupProfile   = "setup_profile"
	StepConnectPayouts = "connect_payouts"
	StepDone           = "done"
)

// ProfileCompleteness returns a 0-100 percentage of filled profile fields.
func ProfileCompleteness(m *models.Mentor) int {
	if m == nil {
		return 0
	}

	checks := []bool{
		m.Name != "",
		m.Category != "" && m.Category != models.CategoryOther,
		m.Tagline != "",
		m.Bio != "",
		hasPricing(m),
		m.StripeAccountID != "",
		m.Timezone != "",
	}

	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

func hasPricing(m *models.Mentor) bool {
	switch m.OfferType {
	case models.OfferAccess:
		return m.AccessPriceCents > 0
	case models.OfferTime:
		return m.HourlyRateCents > 0
	case models.OfferBoth:
		return m.AccessPriceCents > 0 && m.HourlyRateCents > 0
	}
	return false
}

// OnboardingStep derives where a would-be mentor is in the funnel from the
// state of their application and profile.
func OnboardingStep(app *models.Application, m *models.Mentor) string {
	if app == nil {
		return StepApply
	}
	if app.Status == models.ApplicationPending {
		return StepAwaitReview
	}
	if app.Status == models.ApplicationRejected {
		return StepApply
	}
	if m == nil || ProfileCompleteness(m) < 50 {
		return StepSetupProfile
	}
	if m.StripeAccountID == "" {
		return StepConnectPayouts
	}
	return StepDone
}
