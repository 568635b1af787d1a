package mentor

// TrustedThreshold is the number of learner-verified bookings at which a
// mentor graduates to trusted status. The transition is one-way.
const TrustedThreshold = 5

// FraudDeactivationThreshold is the fraud-report count that forces a
// mentor's IsActive flag off.
const FraudDeactivationThreshold = 2

func QualifiesAsTrusted(verifiedCount int) bool {
	return verifiedCount >= TrustedThreshold
}
