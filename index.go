package dbscan

// NeighborIndex answers eps-range queries over a fixed dataset.
// Implementations are built once per run and must be safe for concurrent
// read-only queries.
type NeighborIndex interface {
	// Radius returns the indices of every point q with
	// distance(point i, q) <= eps, in ascending index order. The result
	// always contains i itself for eps >= 0 (a point is at distance 0
	// from itself).
	Radius(i int, eps float64) []int
}

// bruteIndex answers range queries by scanning every point.
// data is flat row-major with n rows and dims columns.
type bruteIndex struct {
	data   []float64
	n      int
	dims   int
	metric DistanceMetric
}

func newBruteIndex(data []float64, n, dims int, metric DistanceMetric) *bruteIndex {
	return &bruteIndex{data: data, n: n, dims: dims, metric: metric}
}

func (b *bruteIndex) Radius(i int, eps float64) []int {
	p := b.data[i*b.dims : (i+1)*b.dims]
	var neighbors []int
	for j := 0; j < b.n; j++ {
		q := b.data[j*b.dims : (j+1)*b.dims]
		if b.metric.Distance(p, q) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// matrixIndex answers range queries from a precomputed distance matrix.
// dist is flat n*n row-major, dist[i*n+j] = distance between points i and j.
type matrixIndex struct {
	dist []float64
	n    int
}

func newMatrixIndex(dist []float64, n int) *matrixIndex {
	return &matrixIndex{dist: dist, n: n}
}

func (m *matrixIndex) Radius(i int, eps float64) []int {
	row := m.dist[i*m.n : (i+1)*m.n]
	var neighbors []int
	for j, d := range row {
		if d <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
