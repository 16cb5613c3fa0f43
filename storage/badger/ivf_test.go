package badger

import (
	"testing"

	"github.com/bharadwaj008/Article-Search-Pipeline/core"
	"github.com/stretchr/testify/assert"
)

func TestTrainCentroids(t *testing.T) {
	vectors := [][]float32{{10, 0}, {11, 0}, {-10, 0}, {-11, 0}}

	centroids, assign := trainCentroids(core.MetricL2, vectors, 2, 10)
	assert.Len(t, centroids, 2)
	assert.Equal(t, assign[0], assign[1])
	assert.Equal(t, assign[2], assign[3])
	assert.NotEqual(t, assign[0], assign[2])
	assert.InDelta(t, 10.5, centroids[assign[0]][0], 1e-6)
	assert.InDelta(t, -10.5, centroids[assign[2]][0], 1e-6)
}

func TestTrainCentroids_Degenerate(t *testing.T) {
	centroids, assign := trainCentroids(core.MetricL2, nil, 4, 10)
	assert.Nil(t, centroids)
	assert.Nil(t, assign)

	// k is capped at the number of vectors.
	centroids, assign = trainCentroids(core.MetricL2, [][]float32{{1, 1}}, 128, 10)
	assert.Len(t, centroids, 1)
	assert.Equal(t, []int{0}, assign)
}

func TestNearestPartitions(t *testing.T) {
	centroids := []centroid{
		{partition: 0, vector: []float32{0, 0}},
		{partition: 1, vector: []float32{5, 0}},
		{partition: 2, vector: []float32{10, 0}},
	}

	assert.Equal(t, []uint32{2, 1}, nearestPartitions(core.MetricL2, centroids, []float32{9, 0}, 2))
	assert.Equal(t, []uint32{2, 1, 0}, nearestPartitions(core.MetricL2, centroids, []float32{9, 0}, 10))
	assert.Equal(t, []uint32{2}, nearestPartitions(core.MetricIP, centroids, []float32{1, 0}, 1))
	assert.Empty(t, nearestPartitions(core.MetricL2, nil, []float32{1, 0}, 3))
}
