// Package spatial provides the distance helpers and the density-based
// clustering used to group nearby open detections.
package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius in meters
const EarthRadiusMeters = 6371000.0

// HaversineDistance calculates the great-circle distance between two
// points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PlanarDegreeDistance is the Euclidean distance between two points on
// raw degree coordinates. It is not a geodesic metric: one degree spans
// ~111 km north-south everywhere but shrinks east-west by cos(lat), so
// a fixed threshold covers an ellipse away from the equator. Kept for
// clustering because the neighborhoods involved are tens of meters wide
// and the threshold is calibrated in degrees.
func PlanarDegreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// Centroid returns the arithmetic mean of a set of coordinates.
// Adequate for cluster-sized extents; not meridian-wrap safe.
func Centroid(points []Point) (lat, lng float64) {
	if len(points) == 0 {
		return 0, 0
	}
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return lat / n, lng / n
}
