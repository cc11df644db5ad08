package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeNeverDonated(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	res := Compute(nil, DefaultCooldownDays, now)

	assert.True(t, res.IsEligible)
	assert.Equal(t, now, res.EligibleSince)
}

func TestComputeWithinCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -10)

	res := Compute(&last, DefaultCooldownDays, now)

	assert.False(t, res.IsEligible)
	assert.Equal(t, last.AddDate(0, 0, DefaultCooldownDays), res.EligibleSince)
}

func TestComputePastCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		daysAgo  int
		cooldown int
		eligible bool
	}{
		{"exactly at cooldown", 56, 56, true},
		{"one day past", 57, 56, true},
		{"one day short", 55, 56, false},
		{"custom cooldown met", 30, 28, true},
		{"custom cooldown not met", 20, 28, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := now.AddDate(0, 0, -tt.daysAgo)
			res := Compute(&last, tt.cooldown, now)
			assert.Equal(t, tt.eligible, res.IsEligible)
			if tt.eligible {
				assert.Equal(t, now, res.EligibleSince)
			} else {
				assert.Equal(t, last.AddDate(0, 0, tt.cooldown), res.EligibleSince)
			}
		})
	}
}

func TestComputeTruncatesPartialDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 55 days and 20 hours ago: not yet 56 whole days
	last := now.Add(-(55*24 + 20) * time.Hour)

	res := Compute(&last, 56, now)

	assert.False(t, res.IsEligible)
}
