package spatial

import (
	"math"
	"testing"
)

func TestDBSCANGroupsClosePointsAndLeavesFarNoise(t *testing.T) {
	// A and B are ~0.0001 degrees apart, C is ~0.1 degrees away
	points := []Point{
		{ID: "a", Lat: 43.6800, Lng: -79.7600},
		{ID: "b", Lat: 43.6801, Lng: -79.7600},
		{ID: "c", Lat: 43.7800, Lng: -79.7600},
	}

	labels := DBSCAN(points, 0.0005, 2)

	if labels[0] <= 0 || labels[1] <= 0 {
		t.Fatalf("close points got labels %d, %d; want positive cluster ids", labels[0], labels[1])
	}
	if labels[0] != labels[1] {
		t.Errorf("close points in different clusters: %d vs %d", labels[0], labels[1])
	}
	if labels[2] != Noise {
		t.Errorf("far point got label %d, want noise", labels[2])
	}
}

func TestDBSCANBorderPointJoinsCluster(t *testing.T) {
	// d1 and d2 are mutually within eps (core with minPts=3 counting the
	// border point); b sits within eps of d1 only
	points := []Point{
		{ID: "d1", Lat: 0.0000, Lng: 0},
		{ID: "d2", Lat: 0.0002, Lng: 0},
		{ID: "b", Lat: -0.0003, Lng: 0},
	}

	labels := DBSCAN(points, 0.0004, 3)

	if labels[0] <= 0 {
		t.Fatalf("core point labeled %d", labels[0])
	}
	if labels[2] != labels[0] {
		t.Errorf("border point label %d, want %d", labels[2], labels[0])
	}
}

func TestDBSCANChainsCorePoints(t *testing.T) {
	// Five points in a line, each within eps of the next: one cluster
	points := make([]Point, 5)
	for i := range points {
		points[i] = Point{Lat: float64(i) * 0.0004, Lng: 0}
	}

	labels := DBSCAN(points, 0.0005, 2)

	for i, l := range labels {
		if l != labels[0] {
			t.Errorf("point %d in cluster %d, want %d", i, l, labels[0])
		}
	}
}

func TestDBSCANAllNoise(t *testing.T) {
	points := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
	}

	labels := DBSCAN(points, 0.0005, 2)
	for i, l := range labels {
		if l != Noise {
			t.Errorf("isolated point %d labeled %d, want noise", i, l)
		}
	}
}

func TestDBSCANTwoSeparateClusters(t *testing.T) {
	points := []Point{
		{Lat: 0.0000, Lng: 0},
		{Lat: 0.0001, Lng: 0},
		{Lat: 1.0000, Lng: 1},
		{Lat: 1.0001, Lng: 1},
	}

	labels := DBSCAN(points, 0.0005, 2)

	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Fatalf("pairs split: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Errorf("distinct clusters share label %d", labels[0])
	}
}

func TestDBSCANEmpty(t *testing.T) {
	if labels := DBSCAN(nil, 0.0005, 2); len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestHaversineDistance(t *testing.T) {
	// ~111 km per degree of latitude at the equator
	d := HaversineDistance(0, 0, 1, 0)
	if math.Abs(d-111195) > 200 {
		t.Errorf("1 degree latitude = %v m, want ~111195", d)
	}

	if d := HaversineDistance(43.68, -79.76, 43.68, -79.76); d != 0 {
		t.Errorf("identical points distance = %v, want 0", d)
	}
}

func TestCentroid(t *testing.T) {
	lat, lng := Centroid([]Point{
		{Lat: 0, Lng: 0},
		{Lat: 2, Lng: 4},
	})
	if lat != 1 || lng != 2 {
		t.Errorf("centroid = (%v, %v), want (1, 2)", lat, lng)
	}

	if lat, lng := Centroid(nil); lat != 0 || lng != 0 {
		t.Errorf("empty centroid = (%v, %v)", lat, lng)
	}
}
