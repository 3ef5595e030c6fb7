package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances.
const EarthRadiusKM = 6371.0088

// Distance returns the haversine great-circle distance in kilometres between
// two [lon, lat] points given in degrees.
func Distance(a, b geom.Coord) float64 {
	lon1, lat1 := a[0]*math.Pi/180, a[1]*math.Pi/180
	lon2, lat2 := b[0]*math.Pi/180, b[1]*math.Pi/180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)

	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
