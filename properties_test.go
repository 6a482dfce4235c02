package dbscan

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Property tests check algebraic invariants of the algorithm on random
// blob data rather than hand-built layouts.

// randomBlobs generates points drawn around k well-separated centers plus
// a few scattered outliers, from a fixed seed.
func randomBlobs(n, k int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	centers := make([][2]float64, k)
	for i := range centers {
		centers[i] = [2]float64{float64(i) * 50, float64(i%2) * 50}
	}
	data := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		if i%17 == 0 {
			// scattered outlier
			data = append(data, []float64{rng.Float64()*1000 + 200, rng.Float64()*1000 + 200})
			continue
		}
		c := centers[i%k]
		data = append(data, []float64{
			c[0] + rng.NormFloat64(),
			c[1] + rng.NormFloat64(),
		})
	}
	return data
}

func TestProperty_LabelConservation(t *testing.T) {
	data := randomBlobs(120, 3, 1)
	cfg := DefaultConfig()
	cfg.Eps = 2
	cfg.MinPts = 4
	result, err := Cluster(data, cfg)
	require.NoError(t, err)

	require.Len(t, result.Labels, len(data))
	require.Len(t, result.Roles, len(data))
	for i, l := range result.Labels {
		require.True(t, l == Noise || (l >= 0 && l < result.NumClusters),
			"point %d has out-of-range label %d", i, l)
	}
	// Every cluster id in [0, NumClusters) is used.
	used := make([]bool, result.NumClusters)
	for _, l := range result.Labels {
		if l != Noise {
			used[l] = true
		}
	}
	for id, ok := range used {
		require.True(t, ok, "cluster id %d assigned to no point", id)
	}
}

func TestProperty_Idempotence(t *testing.T) {
	data := randomBlobs(150, 3, 2)
	cfg := DefaultConfig()
	cfg.Eps = 2.5
	cfg.MinPts = 5

	first, err := Cluster(data, cfg)
	require.NoError(t, err)
	for run := 0; run < 3; run++ {
		again, err := Cluster(data, cfg)
		require.NoError(t, err)
		require.Equal(t, first.Labels, again.Labels, "run %d", run)
		require.Equal(t, first.Roles, again.Roles, "run %d", run)
		require.Equal(t, first.NumClusters, again.NumClusters, "run %d", run)
	}
}

func TestProperty_EpsMonotonicity(t *testing.T) {
	data := randomBlobs(130, 3, 3)
	cfg := DefaultConfig()
	cfg.MinPts = 4

	epsValues := []float64{0.5, 1, 2, 4, 8, 16}
	var prev *Result
	var prevEps float64
	for _, eps := range epsValues {
		cfg.Eps = eps
		result, err := Cluster(data, cfg)
		require.NoError(t, err)

		if prev != nil {
			// Noise only shrinks as eps grows.
			require.LessOrEqual(t, countNoise(result.Labels), countNoise(prev.Labels),
				"noise count grew from eps=%v to eps=%v", prevEps, eps)

			// Core points clustered together stay together: density
			// reachability only grows with eps. Border ownership may
			// legitimately flip, so only core-core pairs are checked.
			for i := range data {
				if prev.Roles[i] != RoleCore {
					continue
				}
				for j := i + 1; j < len(data); j++ {
					if prev.Roles[j] != RoleCore || prev.Labels[i] != prev.Labels[j] {
						continue
					}
					require.Equal(t, result.Labels[i], result.Labels[j],
						"core points %d and %d separated by raising eps %v -> %v", i, j, prevEps, eps)
				}
			}
		}
		prev = result
		prevEps = eps
	}
}

func TestProperty_MinPtsOneEliminatesNoise(t *testing.T) {
	data := randomBlobs(90, 3, 4)
	cfg := DefaultConfig()
	cfg.Eps = 1
	cfg.MinPts = 1
	result, err := Cluster(data, cfg)
	require.NoError(t, err)

	require.Zero(t, countNoise(result.Labels))
	for i, role := range result.Roles {
		require.Equal(t, RoleCore, role, "point %d", i)
	}
}

func TestProperty_NoiseIffRoleNoise(t *testing.T) {
	data := randomBlobs(110, 2, 5)
	cfg := DefaultConfig()
	cfg.Eps = 1.5
	cfg.MinPts = 6
	result, err := Cluster(data, cfg)
	require.NoError(t, err)

	for i := range data {
		if result.Roles[i] == RoleNoise {
			require.Equal(t, Noise, result.Labels[i], "noise point %d got a cluster", i)
		} else {
			require.NotEqual(t, Noise, result.Labels[i], "reachable point %d left as noise", i)
		}
	}
}

func countNoise(labels []int) int {
	n := 0
	for _, l := range labels {
		if l == Noise {
			n++
		}
	}
	return n
}
