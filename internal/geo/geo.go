// Package geo computes great-circle distances and filters items by radius.
package geo

import (
	"math"

	"github.com/erazemk/lostfound/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance in kilometres between two points
// given in degrees. Antipodal points and poles get no special treatment.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// FilterByRadius keeps items within radiusKm of the center. Items without
// coordinates are always kept. Order is preserved.
func FilterByRadius(items []model.Item, lat, lon, radiusKm float64) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !item.HasLocation() || DistanceKm(lat, lon, *item.Lat, *item.Lon) <= radiusKm {
			out = append(out, item)
		}
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
