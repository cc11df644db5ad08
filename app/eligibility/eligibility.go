package eligibility

import "time"

// DefaultCooldownDays the standard whole-blood donation interval
const DefaultCooldownDays = 56

// Result derived eligibility state for a donor
type Result struct {
	IsEligible    bool
	EligibleSince time.Time
}

// Compute derives a donor's eligibility window from their last donation.
// A donor with no prior donation is eligible now. Otherwise the donor is
// eligible once cooldownDays whole days have elapsed; until then
// EligibleSince points at the end of the cooldown.
func Compute(lastDonationDate *time.Time, cooldownDays int, now time.Time) Result {
	if lastDonationDate == nil {
		return Result{IsEligible: true, EligibleSince: now}
	}

	daysSince := int(now.Sub(*lastDonationDate).Hours() / 24)
	if daysSince >= cooldownDays {
		return Result{IsEligible: true, EligibleSince: now}
	}

	return Result{
		IsEligible:    false,
		EligibleSince: lastDonationDate.AddDate(0, 0, cooldownDays),
	}
}
