package dbscan

// expandClusters assigns a final cluster label to every point. Points are
// scanned in input order; each unvisited core point seeds a new cluster,
// which is grown breadth-first by absorbing every density-reachable point:
// the frontier starts with the seed's neighborhood, and each core point
// popped from the frontier enqueues its own neighborhood, so clusters
// chain together through overlapping core points.
//
// A non-core point visited before any cluster reaches it is tentatively
// noise; if a later expansion reaches it, it is relabeled into that
// cluster as a border point. Once a point carries a cluster label it is
// never relabeled, so a border point reachable from two clusters belongs
// to whichever reached it first.
//
// Cluster ids are assigned in discovery order starting at 0; points left
// with the Noise label are the outliers. All state is local to the call.
func expandClusters(neighborhoods [][]int, roles []PointRole) (labels []int, numClusters int) {
	n := len(roles)
	labels = make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	c := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		if roles[i] != RoleCore {
			// Tentatively noise; a later cluster may still claim it.
			continue
		}

		labels[i] = c
		frontier := append([]int(nil), neighborhoods[i]...)
		for head := 0; head < len(frontier); head++ {
			q := frontier[head]
			if !visited[q] {
				visited[q] = true
				labels[q] = c
				if roles[q] == RoleCore {
					frontier = append(frontier, neighborhoods[q]...)
				}
			} else if labels[q] == Noise {
				// Visited earlier as tentative noise; claim it as a
				// border point of this cluster.
				labels[q] = c
			}
		}
		c++
	}

	return labels, c
}
