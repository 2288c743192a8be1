// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"github.com/chewxy/math32"
	"sort"
	"sync"
	"sync/atomic"
)

// Pair is a candidate pair from the broad phase. A.ID < B.ID.
type Pair struct {
	A, B *Body
}

// UpdateAABBs updates the AABB of every Body in world. Bodies that move in parallel mode
// should call Body.UpdateAABB themselves.
func UpdateAABBs(world World) {
	world.ForBodies(func(body *Body) (_, _ bool) {
		body.UpdateAABB()
		return
	})
}

// reach is how far the AABB of body extends from its position.
func reach(body *Body) float32 {
	aabb := body.AABB()
	if aabb.Empty() {
		return 0
	}
	return aabb.Center().Distance(body.Position) + aabb.Radius()
}

// ForPairs calls callback once for every pair of Bodies with intersecting AABBs.
// AABBs must be up to date (see UpdateAABBs) and world must not be in parallel mode.
func ForPairs(world World, callback func(a, b *Body) (stop bool)) bool {
	var maxReach float32
	world.ForBodies(func(body *Body) (_, _ bool) {
		maxReach = math32.Max(maxReach, reach(body))
		return
	})

	return world.ForBodiesAndOthers(func(body *Body) (_ bool, radius float32) {
		if r := reach(body); r > 0 {
			radius = r + maxReach
		}
		return
	}, func(body, other *Body) (stop, _, _ bool) {
		// Each pair once
		if body.ID >= other.ID {
			return
		}
		if !body.AABB().Intersects(other.AABB()) {
			return
		}
		stop = callback(body, other)
		return
	})
}

// Pairs collects the result of ForPairs, sorted by ids.
func Pairs(world World, pairs []Pair) []Pair {
	start := len(pairs)
	ForPairs(world, func(a, b *Body) (_ bool) {
		pairs = append(pairs, Pair{A: a, B: b})
		return
	})

	sorted := pairs[start:]
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].A.ID != sorted[j].A.ID {
			return sorted[i].A.ID < sorted[j].A.ID
		}
		return sorted[i].B.ID < sorted[j].B.ID
	})
	return pairs
}

// CollidePairs runs the narrow phase for every pair on workers goroutines.
// Each pair is independent, so they only write to their own slot.
// Returns the Manifolds of colliding pairs in the order of pairs.
func CollidePairs(pairs []Pair, workers int) []Manifold {
	manifolds := make([]Manifold, len(pairs))
	collided := make([]bool, len(pairs))

	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	index := int64(0)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				// Process pairsPerAdd items at a time
				const pairsPerAdd = 16

				end := int(atomic.AddInt64(&index, pairsPerAdd))
				start := end - pairsPerAdd

				if start >= len(pairs) {
					return
				}
				if end > len(pairs) {
					end = len(pairs)
				}

				for i := start; i < end; i++ {
					pair := pairs[i]
					manifolds[i], collided[i] = CollideManifold(pair.A, pair.B)
				}
			}
		}()
	}

	wg.Wait()

	n := 0
	for i := range manifolds {
		if collided[i] {
			manifolds[n] = manifolds[i]
			n++
		}
	}

	// Clear pointers
	for i := n; i < len(manifolds); i++ {
		manifolds[i] = Manifold{}
	}
	return manifolds[:n]
}
