// Package dbscan implements Density-Based Spatial Clustering of
// Applications with Noise (DBSCAN).
//
// DBSCAN groups points that lie in dense regions of feature space and
// labels points in sparse regions as noise, which makes it useful both for
// general clustering and for outlier detection: any point that fails to
// join a cluster is an outlier.
//
// Basic usage:
//
//	cfg := dbscan.DefaultConfig()
//	cfg.Eps = 0.5
//	cfg.MinPts = 5
//	result, err := dbscan.Cluster(data, cfg)
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//	// result.Roles[i] is whether point i is a core, border, or noise point
//
// For precomputed distance matrices:
//
//	result, err := dbscan.ClusterPrecomputed(distMatrix, n, cfg)
//
// # Index selection
//
// By default (Index: "auto"), Cluster picks a neighbor query strategy based
// on the metric and dataset size. For Minkowski-family metrics on datasets
// large enough to benefit, it uses a KD-tree; otherwise it falls back to a
// brute-force scan. Set Config.Index to force a specific strategy:
//
//	cfg.Index = dbscan.IndexBrute  // O(n) scan per neighborhood query
//	cfg.Index = dbscan.IndexKDTree // KD-tree accelerated range queries
//
// # Feature scaling
//
// Distances are computed on the coordinates as given. Features with wider
// ranges dominate the distance calculation, so callers should standardize
// heterogeneous features (z-score, min-max, or similar) before clustering;
// the package does not rescale input.
package dbscan
