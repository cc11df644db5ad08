package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	delhi := Point{Longitude: 77.2090, Latitude: 28.6139}
	mumbai := Point{Longitude: 72.8777, Latitude: 19.0760}

	d := DistanceKm(delhi, mumbai)

	// great-circle Delhi-Mumbai is roughly 1150 km
	assert.InDelta(t, 1150, d, 20)
	assert.Zero(t, DistanceKm(delhi, delhi))
}

func TestRankWithinRadiusOrdersNearestFirst(t *testing.T) {
	center := Point{Longitude: 77.2090, Latitude: 28.6139}
	points := []Point{
		{Longitude: 77.10, Latitude: 28.70},     // ~14 km
		{Longitude: 77.2095, Latitude: 28.6141}, // ~50 m
		{Longitude: 78.00, Latitude: 27.90},     // ~110 km, outside
		{Longitude: 77.30, Latitude: 28.55},     // ~11 km
	}

	ranked := RankWithinRadius(center, points, 50)

	assert.Len(t, ranked, 3)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Equal(t, 3, ranked[1].Index)
	assert.Equal(t, 0, ranked[2].Index)
}

func TestRankWithinRadiusExcludesUnknown(t *testing.T) {
	center := Point{Longitude: 0.01, Latitude: 0.01}
	points := []Point{
		{}, // unknown, even though (0,0) is ~1.5 km from center
		{Longitude: 0.02, Latitude: 0.02},
	}

	ranked := RankWithinRadius(center, points, 100)

	assert.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Index)
}

func TestRankWithinRadiusUnknownCenter(t *testing.T) {
	points := []Point{{Longitude: 1, Latitude: 1}}

	assert.Nil(t, RankWithinRadius(Point{}, points, 1e6))
}

func TestFromCoordinates(t *testing.T) {
	assert.True(t, FromCoordinates(nil).Unknown())
	assert.True(t, FromCoordinates([]float64{}).Unknown())

	p := FromCoordinates([]float64{77.2, 28.6})
	assert.Equal(t, 77.2, p.Longitude)
	assert.Equal(t, 28.6, p.Latitude)
}
