package geo

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371

// Point a (longitude, latitude) pair. The zero value means the location is
// unknown: clients that never set coordinates persist (0,0), and that must
// never match a distance-bounded query.
type Point struct {
	Longitude float64
	Latitude  float64
}

// FromCoordinates builds a Point from a stored [longitude, latitude] slice
func FromCoordinates(coords []float64) Point {
	if len(coords) < 2 {
		return Point{}
	}
	return Point{Longitude: coords[0], Latitude: coords[1]}
}

// Unknown reports whether the point carries no real location
func (p Point) Unknown() bool {
	return p.Longitude == 0 && p.Latitude == 0
}

// DistanceKm great-circle distance between two points (haversine)
func DistanceKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Ranked an item paired with its distance from a search center
type Ranked struct {
	Index      int
	DistanceKm float64
}

// RankWithinRadius returns the indexes of points within radiusKm of center,
// nearest first. Radius is inclusive. Unknown points never rank; an unknown
// center ranks nothing.
func RankWithinRadius(center Point, points []Point, radiusKm float64) []Ranked {
	if center.Unknown() {
		return nil
	}

	ranked := make([]Ranked, 0, len(points))
	for i, p := range points {
		if p.Unknown() {
			continue
		}
		d := DistanceKm(center, p)
		if d <= radiusKm {
			ranked = append(ranked, Ranked{Index: i, DistanceKm: d})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}
