package clustering

import "gonum.org/v1/gonum/floats"

// silhouette computes the mean silhouette coefficient over all points:
// (separation - cohesion) / max(separation, cohesion), where cohesion is the
// mean distance to the point's own cluster and separation the lowest mean
// distance to any other cluster. Points in singleton clusters score 0.
// Only defined for 2 <= k < len(points); callers guard that.
func silhouette(points [][]float64, labels []int, k int) float64 {
	n := len(points)
	sum := 0.0
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	clusterDist := make([]float64, k)
	for i, p := range points {
		for c := range clusterDist {
			clusterDist[c] = 0
		}
		for j, q := range points {
			if i == j {
				continue
			}
			clusterDist[labels[j]] += floats.Distance(p, q, 2)
		}

		own := labels[i]
		if sizes[own] <= 1 {
			continue // silhouette of a singleton is 0
		}
		a := clusterDist[own] / float64(sizes[own]-1)

		b := 0.0
		first := true
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			mean := clusterDist[c] / float64(sizes[c])
			if first || mean < b {
				b = mean
				first = false
			}
		}
		if first {
			continue
		}

		max := a
		if b > max {
			max = b
		}
		if max > 0 {
			sum += (b - a) / max
		}
	}
	return sum / float64(n)
}
