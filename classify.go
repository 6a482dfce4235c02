package dbscan

import "sync"

// PointRole is the DBSCAN role of a point under a given (eps, minPts)
// configuration: core (neighborhood size >= minPts), border (in the
// neighborhood of a core point but not core itself), or noise (neither).
type PointRole uint8

const (
	RoleNoise PointRole = iota
	RoleBorder
	RoleCore
)

func (r PointRole) String() string {
	switch r {
	case RoleCore:
		return "core"
	case RoleBorder:
		return "border"
	default:
		return "noise"
	}
}

// classification holds the per-point neighborhoods and roles for one run.
// Neighborhoods are computed once here and reused by cluster expansion.
type classification struct {
	neighborhoods [][]int
	roles         []PointRole
}

// classifyPoints computes every point's eps-neighborhood through the index
// and assigns roles in two passes: pass 1 marks points with at least
// minPts neighbors (self included) as core; pass 2 marks non-core points
// adjacent to a core point as border, leaving the rest as noise.
//
// Pass 1 queries are independent and run across numWorkers goroutines,
// each writing a contiguous range of result slots; numWorkers <= 1 falls
// back to a sequential loop.
func classifyPoints(index NeighborIndex, n int, eps float64, minPts, numWorkers int) *classification {
	c := &classification{
		neighborhoods: make([][]int, n),
		roles:         make([]PointRole, n),
	}

	computeNeighborhoods(index, n, eps, numWorkers, c.neighborhoods)

	for i := 0; i < n; i++ {
		if len(c.neighborhoods[i]) >= minPts {
			c.roles[i] = RoleCore
		}
	}

	// Border pass: every non-core neighbor of a core point is border.
	for i := 0; i < n; i++ {
		if c.roles[i] != RoleCore {
			continue
		}
		for _, q := range c.neighborhoods[i] {
			if c.roles[q] != RoleCore {
				c.roles[q] = RoleBorder
			}
		}
	}

	return c
}

// computeNeighborhoods fills result[i] with the eps-neighborhood of point i.
// Points are split into contiguous ranges across workers; since ranges
// don't overlap and the index is read-only, no synchronization is needed
// for writes.
func computeNeighborhoods(index NeighborIndex, n int, eps float64, numWorkers int, result [][]int) {
	if numWorkers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			result[i] = index.Radius(i, eps)
		}
		return
	}

	var wg sync.WaitGroup
	pointsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * pointsPerWorker
		end := start + pointsPerWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				result[i] = index.Radius(i, eps)
			}
		}(start, end)
	}

	wg.Wait()
}
