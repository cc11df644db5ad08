package donor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/model"
)

func donorAt(accountID int, lng, lat, prefRadius float64) model.Donor {
	return model.Donor{
		AccountID: accountID,
		Location:  model.Location{Type: "Point", Coordinates: []float64{lng, lat}},
		NotificationPreferences: model.NotificationPreferences{
			UrgentRequests: true,
			RadiusKm:       prefRadius,
		},
	}
}

func TestRankDonorsNearestFirst(t *testing.T) {
	center := geo.Point{Longitude: 77.2090, Latitude: 28.6139} // New Delhi

	donors := []model.Donor{
		donorAt(1, 77.10, 28.70, 0), // ~14 km
		donorAt(2, 77.2095, 28.6140, 0),
		donorAt(3, 72.8777, 19.0760, 0), // Mumbai, far out
	}

	got := rankDonors(donors, center, 50, true)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].AccountID)
	assert.Equal(t, 1, got[1].AccountID)
	assert.Greater(t, got[1].DistanceKm, got[0].DistanceKm)
}

func TestRankDonorsExcludesUnknownLocation(t *testing.T) {
	center := geo.Point{Longitude: 77.2090, Latitude: 28.6139}

	donors := []model.Donor{
		donorAt(1, 0, 0, 0), // never set a location
		donorAt(2, 77.2095, 28.6140, 0),
	}

	got := rankDonors(donors, center, 50, true)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].AccountID)
}

func TestRankDonorsHonorsPreferredRadius(t *testing.T) {
	center := geo.Point{Longitude: 77.2090, Latitude: 28.6139}

	// ~14 km away but only wants matches within 5 km
	donors := []model.Donor{donorAt(1, 77.10, 28.70, 5)}

	assert.Empty(t, rankDonors(donors, center, 50, true))

	// public search ignores the preference
	got := rankDonors(donors, center, 50, false)
	assert.Len(t, got, 1)
}
