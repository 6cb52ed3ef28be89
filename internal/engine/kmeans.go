package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/ProfilePack/internal/model"
)

const defaultKMeansIterations = 100

// KMeansConsolidator clusters footprints with Lloyd's algorithm. Seeding is
// deterministic: the first footprint, then repeatedly the footprint farthest
// from every chosen centroid.
type KMeansConsolidator struct {
	MaxIterations int
}

func (c KMeansConsolidator) Footprints(boxes []model.BoxCandidate, k int, limits model.ContainerLimits) []Footprint {
	if k <= 0 || len(boxes) == 0 {
		return nil
	}
	points := make([][]float64, len(boxes))
	for i, b := range boxes {
		points[i] = []float64{float64(b.Width), float64(b.Height)}
	}

	centroids := seedCentroids(points, k)
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	iterations := c.MaxIterations
	if iterations <= 0 {
		iterations = defaultKMeansIterations
	}
	for iter := 0; iter < iterations; iter++ {
		changed := false
		for i, pt := range points {
			if n := nearest(pt, centroids); n != assign[i] {
				assign[i] = n
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(points, assign, centroids)
	}

	maxW := int(math.Floor(limits.MaxWidth + eps))
	maxH := int(math.Floor(limits.MaxHeight + eps))
	seen := make(map[Footprint]bool)
	out := make([]Footprint, 0, len(centroids))
	for _, ctr := range centroids {
		fp := Footprint{
			Width:  min(model.CeilMM(ctr[0]), maxW),
			Height: min(model.CeilMM(ctr[1]), maxH),
		}
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, fp)
	}
	return out
}

// seedCentroids picks k starting centroids by farthest-point traversal.
// Fewer than k are returned when there are fewer distinct points.
func seedCentroids(points [][]float64, k int) [][]float64 {
	centroids := [][]float64{append([]float64(nil), points[0]...)}
	for len(centroids) < k {
		far, farDist := -1, 0.0
		for i, pt := range points {
			d := floats.Distance(pt, centroids[nearest(pt, centroids)], 2)
			if d > farDist+eps {
				far, farDist = i, d
			}
		}
		if far < 0 {
			break
		}
		centroids = append(centroids, append([]float64(nil), points[far]...))
	}
	return centroids
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(pt []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		if d := floats.Distance(pt, c, 2); d < bestDist-eps {
			best, bestDist = j, d
		}
	}
	return best
}

// updateCentroids moves every centroid to the mean of its points. Centroids
// without points keep their position.
func updateCentroids(points [][]float64, assign []int, centroids [][]float64) {
	for j := range centroids {
		var xs, ys []float64
		for i, pt := range points {
			if assign[i] == j {
				xs = append(xs, pt[0])
				ys = append(ys, pt[1])
			}
		}
		if len(xs) == 0 {
			continue
		}
		centroids[j][0] = stat.Mean(xs, nil)
		centroids[j][1] = stat.Mean(ys, nil)
	}
}
