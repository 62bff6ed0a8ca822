package clustering

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lvonguyen/incidentscope/internal/dataset"
)

// ErrClusterCount means n_clusters is below 1 or exceeds the number of
// distinct feature points in the dataset.
var ErrClusterCount = errors.New("n_clusters out of range")

// Config controls the k-means fit. The seed is fixed so repeated analyses of
// the same dataset produce the same partition.
type Config struct {
	Seed          int64 `yaml:"seed"`
	Restarts      int   `yaml:"restarts"`
	MaxIterations int   `yaml:"max_iterations"`
}

// DefaultConfig mirrors the historical fit parameters: seed 42, 10 restarts.
func DefaultConfig() Config {
	return Config{Seed: 42, Restarts: 10, MaxIterations: 300}
}

// ClusterStat summarizes one cluster, with its centroid expressed in
// original feature units.
type ClusterStat struct {
	ClusterID  int     `json:"cluster_id"`
	Size       int     `json:"size"`
	AvgHour    float64 `json:"avg_hour"`
	AvgDay     float64 `json:"avg_day"`
	AvgMonth   float64 `json:"avg_month"`
	Percentage float64 `json:"percentage"`
}

// Result is a full clustering analysis. Assignments parallels the dataset's
// record order; it is returned here rather than written into the stored
// dataset, so analyses never mutate shared state.
type Result struct {
	SilhouetteScore float64       `json:"silhouette_score"`
	Inertia         float64       `json:"inertia"`
	NClusters       int           `json:"n_clusters"`
	ClusterStats    []ClusterStat `json:"cluster_stats"`
	Centroids       [][]float64   `json:"centroids"`
	Assignments     []int         `json:"-"`
}

// Analyze partitions ds into k clusters over the (hour, day_of_week, month)
// features: z-score scaling fit on this dataset, k-means++ with restarts
// keeping the lowest-inertia run, silhouette scored on the scaled features.
func Analyze(ds *dataset.Dataset, k int, cfg Config) (*Result, error) {
	points := featurePoints(ds)
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrClusterCount, k)
	}
	if distinct := distinctPoints(points); k > distinct {
		return nil, fmt.Errorf("%w: %d clusters for %d distinct points", ErrClusterCount, k, distinct)
	}
	if cfg.Restarts < 1 {
		cfg.Restarts = DefaultConfig().Restarts
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}

	scaler := FitScaler(points)
	scaled := scaler.Transform(points)

	rng := rand.New(rand.NewSource(cfg.Seed))
	run := kMeans(scaled, k, cfg.Restarts, cfg.MaxIterations, rng)

	result := &Result{
		Inertia:     run.inertia,
		NClusters:   k,
		Assignments: run.labels,
		Centroids:   make([][]float64, k),
	}
	// Silhouette is undefined for a single cluster or one point per cluster.
	if k >= 2 && k < len(points) {
		result.SilhouetteScore = silhouette(scaled, run.labels, k)
	}

	sizes := make([]int, k)
	for _, l := range run.labels {
		sizes[l]++
	}
	total := float64(len(points))
	result.ClusterStats = make([]ClusterStat, 0, k)
	for c := 0; c < k; c++ {
		centroid := scaler.InverseTransform(run.centroids[c])
		result.Centroids[c] = centroid
		result.ClusterStats = append(result.ClusterStats, ClusterStat{
			ClusterID:  c,
			Size:       sizes[c],
			AvgHour:    centroid[0],
			AvgDay:     centroid[1],
			AvgMonth:   centroid[2],
			Percentage: float64(sizes[c]) / total * 100,
		})
	}
	return result, nil
}

// featurePoints extracts the three temporal features used for partitioning.
func featurePoints(ds *dataset.Dataset) [][]float64 {
	points := make([][]float64, ds.Len())
	for i, r := range ds.Records {
		points[i] = []float64{float64(r.Hour), float64(r.DayOfWeek), float64(r.Month)}
	}
	return points
}

func distinctPoints(points [][]float64) int {
	seen := make(map[[3]float64]bool, len(points))
	for _, p := range points {
		seen[[3]float64{p[0], p[1], p[2]}] = true
	}
	return len(seen)
}
