package dbscan

import (
	"errors"
	"fmt"
	"math"
	"runtime"
)

// Noise is the sentinel cluster label for points that belong to no cluster.
const Noise = -1

// Index selects the neighbor query strategy.
type Index string

const (
	IndexAuto   Index = "auto"
	IndexBrute  Index = "brute"
	IndexKDTree Index = "kdtree"
)

// Sentinel errors for the two rejection classes. Errors returned by
// Cluster and ClusterPrecomputed wrap one of these, so callers can test
// with errors.Is.
var (
	// ErrInvalidConfig reports an invalid Config field.
	ErrInvalidConfig = errors.New("dbscan: invalid configuration")
	// ErrDimensionMismatch reports malformed input data: ragged rows,
	// zero-dimensional points, or non-finite coordinates.
	ErrDimensionMismatch = errors.New("dbscan: dimension mismatch")
)

// Config controls DBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Eps is the neighborhood radius: two points are neighbors when their
	// distance is <= Eps. Must be > 0. Default: 0.5.
	Eps float64

	// MinPts is the minimum neighborhood size (the point itself included)
	// for a point to be a core point. Must be >= 1. MinPts = 1 makes every
	// point core, so nothing is labeled noise. Default: 5.
	MinPts int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric, CosineMetric. Use DistanceFunc to wrap a custom
	// function. Default: EuclideanMetric.
	Metric DistanceMetric

	// Index selects the neighbor query strategy. "auto" picks a KD-tree
	// for Minkowski-family metrics on datasets large enough to benefit,
	// and a brute-force scan otherwise. "kdtree" requires a
	// Minkowski-family metric. Default: "auto".
	Index Index

	// LeafSize controls the maximum number of points in a KD-tree leaf
	// node. Only used with the KD-tree index. Default: 40.
	LeafSize int

	// Workers controls the number of goroutines used to compute
	// neighborhoods. Cluster expansion itself is sequential, since label
	// assignment is globally ordered. 0 means use runtime.NumCPU().
	// Default: 0 (auto).
	Workers int
}

// Result contains the output of DBSCAN clustering.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed cluster ID in
	// discovery order) or Noise (-1). Labels[i] corresponds to the i-th
	// input point.
	Labels []int

	// Roles holds the final role of each point. A point is noise exactly
	// when Labels[i] == Noise.
	Roles []PointRole

	// NumClusters is the number of clusters found.
	NumClusters int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Eps:    0.5,
		MinPts: 5,
		Metric: EuclideanMetric{},
		Index:  IndexAuto,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Index == "" {
		cfg.Index = IndexAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error wrapping ErrInvalidConfig if not.
func validateConfig(cfg *Config) error {
	if !(cfg.Eps > 0) || math.IsInf(cfg.Eps, 1) {
		return fmt.Errorf("%w: Eps must be positive and finite, got %v", ErrInvalidConfig, cfg.Eps)
	}
	if cfg.MinPts < 1 {
		return fmt.Errorf("%w: MinPts must be >= 1, got %d", ErrInvalidConfig, cfg.MinPts)
	}
	switch cfg.Index {
	case IndexAuto, IndexBrute, IndexKDTree:
		// valid
	default:
		return fmt.Errorf("%w: invalid Index %q", ErrInvalidConfig, cfg.Index)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidConfig, cfg.LeafSize)
	}
	if cfg.Index == IndexKDTree {
		if _, ok := minkowskiExponent(cfg.Metric); !ok {
			return fmt.Errorf("%w: metric %T is not supported by the KD-tree index", ErrInvalidConfig, cfg.Metric)
		}
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && m.P < 1 {
		return fmt.Errorf("%w: MinkowskiMetric.P must be >= 1, got %v", ErrInvalidConfig, m.P)
	}
	return nil
}

// validateData checks that every point has the same nonzero dimensionality
// and that every coordinate is finite. Returns the dimensionality.
func validateData(data [][]float64) (int, error) {
	dims := len(data[0])
	if dims == 0 {
		return 0, fmt.Errorf("%w: points must have at least one dimension", ErrDimensionMismatch)
	}
	for i, row := range data {
		if len(row) != dims {
			return 0, fmt.Errorf("%w: point %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: point %d has non-finite coordinate %v at dimension %d", ErrDimensionMismatch, i, v, j)
			}
		}
	}
	return dims, nil
}

// emptyResult returns a Result with empty non-nil slices.
func emptyResult() *Result {
	return &Result{
		Labels: []int{},
		Roles:  []PointRole{},
	}
}

// Cluster performs DBSCAN clustering on the given data. Each element is a
// point (float64 slice); all points must have the same dimensionality and
// finite coordinates. An empty dataset is valid and yields an empty result.
// Returns an error wrapping ErrInvalidConfig or ErrDimensionMismatch if
// the config or data is invalid; all checks run before any neighborhood
// computation.
//
// The run is deterministic for a fixed input: points are scanned in input
// order, so cluster ids and the noise partition are reproducible. A border
// point reachable from more than one cluster keeps the id of whichever
// cluster the scan discovered first.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	n := len(data)
	if n == 0 {
		return emptyResult(), nil
	}

	dims, err := validateData(data)
	if err != nil {
		return nil, err
	}

	// Cosine distance is undefined (0/0) for a zero vector, which would
	// leave the point outside even its own neighborhood. Reject up front.
	if _, ok := cfg.Metric.(CosineMetric); ok {
		for i, row := range data {
			if isZeroVector(row) {
				return nil, fmt.Errorf("%w: point %d is a zero vector, which has no cosine distance", ErrDimensionMismatch, i)
			}
		}
	}

	flatData := make([]float64, n*dims)
	for i, row := range data {
		copy(flatData[i*dims:], row)
	}

	index := buildIndex(cfg, flatData, n, dims)
	return run(index, n, cfg)
}

// ClusterPrecomputed performs DBSCAN on a precomputed distance matrix.
// distMatrix is a flat []float64 of length n*n in row-major order, where
// distMatrix[i*n+j] is the distance between points i and j. The Metric,
// Index, and LeafSize fields are ignored since distances are already
// computed.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if n < 0 {
		return nil, fmt.Errorf("%w: n must be >= 0, got %d", ErrDimensionMismatch, n)
	}
	if len(distMatrix) != n*n {
		return nil, fmt.Errorf("%w: distMatrix length %d does not match n*n = %d (n=%d)", ErrDimensionMismatch, len(distMatrix), n*n, n)
	}
	for i, d := range distMatrix {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: distMatrix has non-finite entry %v at index %d", ErrDimensionMismatch, d, i)
		}
		if d < 0 {
			return nil, fmt.Errorf("%w: distMatrix has negative entry %v at index %d", ErrDimensionMismatch, d, i)
		}
	}

	if n == 0 {
		return emptyResult(), nil
	}

	return run(newMatrixIndex(distMatrix, n), n, cfg)
}

// buildIndex resolves the Index choice into a concrete NeighborIndex.
// IndexAuto picks the KD-tree when the metric decomposes along axes and
// the dataset is large enough that tree construction pays for itself.
func buildIndex(cfg Config, flatData []float64, n, dims int) NeighborIndex {
	index := cfg.Index
	if index == IndexAuto {
		_, treeCapable := minkowskiExponent(cfg.Metric)
		if treeCapable && n > 2*cfg.LeafSize {
			index = IndexKDTree
		} else {
			index = IndexBrute
		}
	}

	if index == IndexKDTree {
		return NewKDTree(flatData, n, dims, cfg.Metric, cfg.LeafSize)
	}
	return newBruteIndex(flatData, n, dims, cfg.Metric)
}

// run executes the classification and expansion stages over a built index.
func run(index NeighborIndex, n int, cfg Config) (*Result, error) {
	c := classifyPoints(index, n, cfg.Eps, cfg.MinPts, cfg.Workers)
	labels, numClusters := expandClusters(c.neighborhoods, c.roles)
	return &Result{
		Labels:      labels,
		Roles:       c.roles,
		NumClusters: numClusters,
	}, nil
}
