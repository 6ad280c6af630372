package match

import "math"

const earthRadiusKM = 6371

// Coordinate represents a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DistanceKM computes the great-circle distance between two points using the
// Haversine formula. Inputs are not range-checked here; that is the Location
// invariant's job upstream.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Distance is DistanceKM over Coordinate values.
func Distance(a, b Coordinate) float64 {
	return DistanceKM(a.Lat, a.Lon, b.Lat, b.Lon)
}
