package spatial

// Point is a labeled coordinate fed to the clustering algorithm
type Point struct {
	ID  string
	Lat float64
	Lng float64
}

// Noise marks a point reachable from no core point
const Noise = -1

const unvisited = 0

// DBSCAN runs density-based clustering over raw degree coordinates with
// the planar distance metric. A point is a core point when at least
// minPts points (itself included) lie within eps of it; core points
// within eps of each other share a cluster, non-core points within eps
// of a core point join it as border points, and everything else is
// noise. Labels returned are positive integers, stable within a run and
// assigned in discovery order; noise points get Noise.
func DBSCAN(points []Point, eps float64, minPts int) []int {
	labels := make([]int, len(points))

	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			labels[i] = Noise
			continue
		}

		cluster++
		labels[i] = cluster

		// Expand the cluster breadth-first from the seed's neighborhood
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if labels[j] == Noise {
				// Previously noise, reachable from a core point: border
				labels[j] = cluster
				continue
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster

			jNeighbors := regionQuery(points, j, eps)
			if len(jNeighbors) >= minPts {
				neighbors = append(neighbors, jNeighbors...)
			}
		}
	}

	return labels
}

// regionQuery returns the indexes of all points within eps of points[i],
// including i itself
func regionQuery(points []Point, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if PlanarDegreeDistance(points[i].Lat, points[i].Lng, points[j].Lat, points[j].Lng) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
