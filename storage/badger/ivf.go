package badger

import (
	"sort"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
)

// centroid is one IVF partition center.
type centroid struct {
	partition uint32
	vector    []float32
}

// closer reports whether score a ranks ahead of score b under metric.
func closer(metric core.Metric, a, b float32) bool {
	if metric == core.MetricIP {
		return a > b
	}
	return a < b
}

// score computes the ranking score of candidate against query.
// L2 uses Euclidean distance and IP the inner product.
func score(metric core.Metric, query, candidate []float32) float32 {
	if metric == core.MetricIP {
		return core.DotProduct(query, candidate)
	}
	return core.L2Distance(query, candidate)
}

// nearest returns the index of the centroid closest to vec.
func nearest(metric core.Metric, centroids [][]float32, vec []float32) int {
	best := 0
	var bestScore float32
	for i, c := range centroids {
		s := score(metric, vec, c)
		if i == 0 || closer(metric, s, bestScore) {
			best, bestScore = i, s
		}
	}
	return best
}

// nearestPartitions returns the n partitions whose centroids rank closest to vec.
func nearestPartitions(metric core.Metric, centroids []centroid, vec []float32, n int) []uint32 {
	type ranked struct {
		partition uint32
		score     float32
	}
	all := make([]ranked, len(centroids))
	for i, c := range centroids {
		all[i] = ranked{partition: c.partition, score: score(metric, vec, c.vector)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return closer(metric, all[i].score, all[j].score)
		}
		return all[i].partition < all[j].partition
	})
	if n > len(all) {
		n = len(all)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].partition
	}
	return out
}

// trainCentroids clusters vectors into k partitions with Lloyd's algorithm.
// Seeding picks evenly spaced input vectors so training is deterministic for
// a given input order. Returns the centroids and each vector's partition.
func trainCentroids(metric core.Metric, vectors [][]float32, k, iterations int) ([][]float32, []int) {
	n := len(vectors)
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	dim := len(vectors[0])

	centroids := make([][]float32, k)
	for i := range centroids {
		centroids[i] = append([]float32(nil), vectors[i*n/k]...)
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < iterations; iter++ {
		changed := false
		for i, vec := range vectors {
			c := nearest(metric, centroids, vec)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dim)
		}
		for i, vec := range vectors {
			c := assign[i]
			counts[c]++
			for j, val := range vec {
				sums[c][j] += float64(val)
			}
		}
		for c := range centroids {
			// Empty partitions keep their previous center.
			if counts[c] == 0 {
				continue
			}
			next := make([]float32, dim)
			for j := range next {
				next[j] = float32(sums[c][j] / float64(counts[c]))
			}
			if metric == core.MetricIP {
				next = core.NormalizeVector(next)
			}
			centroids[c] = next
		}
	}

	for i, vec := range vectors {
		assign[i] = nearest(metric, centroids, vec)
	}
	return centroids, assign
}
