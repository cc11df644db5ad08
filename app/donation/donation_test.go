package donation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink-app/bloodlink-server/model"
)

func TestEarnedBadgesThresholds(t *testing.T) {
	now := time.Now()

	got := earnedBadges(nil, 1, now)
	require.Len(t, got, 1)
	assert.Equal(t, "First Donation", got[0].Name)

	// fifth donation grants the regular badge only; first is already held
	held := []model.Badge{{Name: "First Donation", EarnedDate: now}}
	got = earnedBadges(held, 5, now)
	require.Len(t, got, 1)
	assert.Equal(t, "Regular Donor", got[0].Name)

	// a donor whose history jumps straight to 10 collects every milestone
	got = earnedBadges(nil, 10, now)
	require.Len(t, got, 3)
}

func TestEarnedBadgesNeverDuplicates(t *testing.T) {
	now := time.Now()
	held := []model.Badge{
		{Name: "First Donation", EarnedDate: now},
		{Name: "Regular Donor", EarnedDate: now},
		{Name: "Hero Donor", EarnedDate: now},
	}

	assert.Empty(t, earnedBadges(held, 12, now))
}

func TestApplyDonationUpdatesDerivedState(t *testing.T) {
	now := time.Now()
	donationDate := now.Add(-2 * time.Hour)
	eligibleSince := donationDate.AddDate(0, 0, 56)

	donor := &model.Donor{
		BloodType: "B+",
		Rewards:   model.Rewards{Points: 30},
	}
	for i := 0; i < 4; i++ {
		donor.DonationHistory = append(donor.DonationHistory, model.DonationRecord{Date: now.AddDate(0, -2*(4-i), 0)})
	}

	record := model.DonationRecord{Date: donationDate, Component: "whole blood", Volume: 450}
	earned := applyDonation(donor, record, eligibleSince, false, 10, now)

	assert.Len(t, donor.DonationHistory, 5)
	require.NotNil(t, donor.LastDonationDate)
	assert.True(t, donor.LastDonationDate.Equal(donationDate))
	assert.False(t, donor.IsEligible)
	assert.True(t, donor.EligibleToDonateSince.Equal(eligibleSince))
	assert.Equal(t, 40, donor.Rewards.Points)

	require.Len(t, earned, 2) // first + regular, none held before
	require.NotNil(t, donor.Availability.NextAvailableDate)
	assert.True(t, donor.Availability.NextAvailableDate.Equal(eligibleSince))
}
