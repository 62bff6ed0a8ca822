package clustering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// kmeansRun is the outcome of one full k-means fit.
type kmeansRun struct {
	centroids [][]float64
	labels    []int
	inertia   float64
}

// kMeans runs Lloyd's algorithm `restarts` times with k-means++ seeding and
// keeps the run with the lowest inertia. The caller provides the RNG so a
// fixed seed makes the whole fit deterministic.
func kMeans(points [][]float64, k, restarts, maxIter int, rng *rand.Rand) kmeansRun {
	best := kmeansRun{inertia: math.Inf(1)}
	for r := 0; r < restarts; r++ {
		run := lloyd(points, plusPlusInit(points, k, rng), maxIter, rng)
		if run.inertia < best.inertia {
			best = run
		}
	}
	return best
}

// plusPlusInit picks k initial centroids with the k-means++ strategy: the
// first uniformly, each next with probability proportional to its squared
// distance from the nearest chosen centroid.
func plusPlusInit(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clonePoint(points[rng.Intn(len(points))]))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := sqDist(p, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All remaining points coincide with a centroid; any choice works.
			centroids = append(centroids, clonePoint(points[rng.Intn(len(points))]))
			continue
		}

		target := rng.Float64() * total
		acc := 0.0
		chosen := len(points) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clonePoint(points[chosen]))
	}
	return centroids
}

// lloyd iterates assignment and centroid update until labels stop changing
// or maxIter is hit. An emptied cluster is reseeded with a random point.
func lloyd(points [][]float64, centroids [][]float64, maxIter int, rng *rand.Rand) kmeansRun {
	k := len(centroids)
	dims := len(points[0])
	labels := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDist(p, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best || iter == 0 {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				centroids[c] = clonePoint(points[rng.Intn(len(points))])
				continue
			}
			for d := range sums[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return kmeansRun{centroids: centroids, labels: labels, inertia: inertia}
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clonePoint(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
