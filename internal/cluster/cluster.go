// Package cluster groups geolocated items into itinerary days.
package cluster

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/rcliao/itinerary/internal/model"
)

// Iterations is the fixed number of centroid relaxation rounds.
const Iterations = 10

// Point is an item with planar (lat, lon) coordinates.
type Point[T any] struct {
	Coord model.Coordinate
	Data  T
}

// Cluster is one day's group of points.
type Cluster[T any] struct {
	Points   []Point[T]
	Centroid model.Coordinate
}

// Days partitions points into at most numDays geographic groups with a
// k-means style relaxation. rng seeds the initial centroids; nil uses a
// time-seeded source. Empty groups are dropped from the result.
func Days[T any](points []Point[T], numDays int, rng *rand.Rand) []Cluster[T] {
	switch {
	case len(points) == 0:
		return []Cluster[T]{}
	case numDays <= 0:
		return []Cluster[T]{group(points)}
	case len(points) <= numDays:
		out := make([]Cluster[T], 0, len(points))
		for _, p := range points {
			out = append(out, group([]Point[T]{p}))
		}
		return out
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	centroids := make([]model.Coordinate, numDays)
	for i, idx := range rng.Perm(len(points))[:numDays] {
		centroids[i] = points[idx].Coord
	}

	var members [][]Point[T]
	for iter := 0; iter < Iterations; iter++ {
		members = make([][]Point[T], numDays)
		for _, p := range points {
			best := nearest(p.Coord, centroids)
			members[best] = append(members[best], p)
		}

		next := make([]model.Coordinate, numDays)
		for i, m := range members {
			if len(m) == 0 {
				// Empty groups fall back to the first centroid of the previous
				// round rather than being re-seeded.
				next[i] = centroids[0]
				slog.Warn("empty day cluster", "cluster", i, "iteration", iter)
				continue
			}
			next[i] = mean(m)
		}
		centroids = next
	}

	out := make([]Cluster[T], 0, numDays)
	for _, m := range members {
		if len(m) > 0 {
			out = append(out, group(m))
		}
	}
	slog.Debug("clustering finished", "points", len(points), "days", numDays, "clusters", len(out))
	return out
}

func group[T any](ps []Point[T]) Cluster[T] {
	return Cluster[T]{Points: ps, Centroid: mean(ps)}
}

func nearest(c model.Coordinate, centroids []model.Coordinate) int {
	best, bestDist := 0, math.Inf(1)
	for i, k := range centroids {
		d := math.Hypot(c.Lat-k.Lat, c.Lon-k.Lon)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func mean[T any](ps []Point[T]) model.Coordinate {
	var lat, lon float64
	for _, p := range ps {
		lat += p.Coord.Lat
		lon += p.Coord.Lon
	}
	n := float64(len(ps))
	return model.Coordinate{Lat: lat / n, Lon: lon / n}
}
