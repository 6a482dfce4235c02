package dbscan

import (
	"math"
	"sort"
)

// nodeData describes a single node in the KD-tree.
type nodeData struct {
	idxStart, idxEnd int
	isLeaf           bool
}

// KDTree is a KD-tree spatial index for eps-range queries. Points are
// stored in a flat row-major array and reordered internally via an index
// permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
//
// Only axis-decomposable (Minkowski-family) metrics are supported, since
// pruning relies on axis-aligned bounding-box lower bounds.
type KDTree struct {
	data     []float64 // flat row-major point data (n * dims)
	n        int       // number of points
	dims     int       // dimensionality
	leafSize int
	metric   DistanceMetric
	p        float64 // Minkowski exponent of metric, for pruning bounds
	idxArray []int   // permutation: tree-order position → original index
	nodes    []nodeData
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
// metric must be a Minkowski-family metric (Euclidean, Manhattan,
// Chebyshev, Minkowski); NewKDTree panics otherwise — callers go through
// Config validation, which routes unsupported metrics to the brute index.
func NewKDTree(data []float64, n, dims int, metric DistanceMetric, leafSize int) *KDTree {
	if leafSize < 1 {
		leafSize = 1
	}
	p, ok := minkowskiExponent(metric)
	if !ok {
		panic("dbscan: KDTree requires a Minkowski-family metric")
	}

	// Copy data and build identity index array.
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)

	t := &KDTree{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		p:             p,
		idxArray:      idxArray,
		nodes:         make([]nodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
	}

	return t
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, nodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = nodeData{idxStart: start, idxEnd: end, isLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *KDTree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// Radius returns the indices of every point within eps of point i, self
// included, in ascending index order. The pruning bound is a lower bound
// on the true distance, so the result is identical to a brute-force scan.
func (t *KDTree) Radius(i int, eps float64) []int {
	query := t.data[i*t.dims : (i+1)*t.dims]
	var neighbors []int
	t.radiusSearch(0, query, eps, &neighbors)
	sort.Ints(neighbors)
	return neighbors
}

// radiusSearch collects all points within eps of query under nodeID.
func (t *KDTree) radiusSearch(nodeID int, query []float64, eps float64, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.idxStart == node.idxEnd && nodeID != 0 {
		return // uninitialized node
	}

	if t.minDistPoint(nodeID, query) > eps {
		return
	}

	if node.isLeaf {
		for i := node.idxStart; i < node.idxEnd; i++ {
			ptIdx := t.idxArray[i]
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			if t.metric.Distance(query, pt) <= eps {
				*out = append(*out, ptIdx)
			}
		}
		return
	}

	t.radiusSearch(2*nodeID+1, query, eps, out)
	t.radiusSearch(2*nodeID+2, query, eps, out)
}

// minDistPoint returns a lower bound on the distance between a point and
// any point in the given node, computed from the node's axis-aligned
// bounding box.
func (t *KDTree) minDistPoint(nodeID int, point []float64) float64 {
	base := nodeID * t.dims

	if math.IsInf(t.p, 1) {
		// Chebyshev: largest per-dimension gap.
		var bound float64
		for j := 0; j < t.dims; j++ {
			if d := t.boundsGap(base, j, point[j]); d > bound {
				bound = d
			}
		}
		return bound
	}

	var sum float64
	for j := 0; j < t.dims; j++ {
		if d := t.boundsGap(base, j, point[j]); d > 0 {
			sum += math.Pow(d, t.p)
		}
	}
	if sum == 0 {
		return 0
	}
	return math.Pow(sum, 1/t.p)
}

// boundsGap returns how far v lies outside the node's bounds along
// dimension j, or 0 if it is inside.
func (t *KDTree) boundsGap(base, j int, v float64) float64 {
	lo := t.nodeBoundsMin[base+j]
	hi := t.nodeBoundsMax[base+j]
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}
