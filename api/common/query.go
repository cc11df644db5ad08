package common

import (
	"net/http"
	"strconv"

	"github.com/bloodlink-app/bloodlink-server/app/geo"
	"github.com/bloodlink-app/bloodlink-server/apperr"
)

// ParseGeoQuery reads lat/lng/radius query parameters. Radius is optional
// and 0 when absent; callers apply their own default.
func ParseGeoQuery(r *http.Request) (geo.Point, float64, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return geo.Point{}, 0, apperr.NewValidation("invalid coordinates", map[string]string{"lat": "required number"})
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return geo.Point{}, 0, apperr.NewValidation("invalid coordinates", map[string]string{"lng": "required number"})
	}

	radius := 0.0
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			return geo.Point{}, 0, apperr.NewValidation("invalid radius", map[string]string{"radius": "must be a positive number"})
		}
	}
	return geo.Point{Longitude: lng, Latitude: lat}, radius, nil
}
