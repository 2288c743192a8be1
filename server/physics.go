// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"github.com/chewxy/math32"
	"runtime"
	"time"
)

// Physics moves every body by seconds and finds the contacts between them.
// The results are kept in h.pairs and h.manifolds until the next call.
func (h *Hub) Physics(seconds float32) {
	defer h.timeFunction("physics", time.Now())

	start := time.Now()
	h.tick++

	// Movement doesn't depend on other bodies so it can run in parallel
	radius := h.worldRadius
	h.world.SetParallel(true)
	h.world.ForBodies(func(body *physics.Body) (_, _ bool) {
		body.Integrate(seconds)
		bounce(body, radius)
		body.UpdateAABB()
		return
	})
	h.world.SetParallel(false)

	h.pairs = physics.Pairs(h.world, h.pairs[:0])

	h.manifolds = physics.CollidePairs(h.pairs, runtime.NumCPU())

	contacts := 0
	for i := range h.manifolds {
		contacts += len(h.manifolds[i].Contacts)
	}

	h.statistics.add(Statistics{
		Ticks:     1,
		Bodies:    h.world.Count(),
		Pairs:     len(h.pairs),
		Manifolds: len(h.manifolds),
		Contacts:  contacts,
		Duration:  time.Since(start),
	})
}

// bounce reflects the velocity of body if it is leaving the square world of radius.
// Position is clamped so body doesn't escape while moving fast.
func bounce(body *physics.Body, radius float32) {
	if body.Position.X < -radius && body.Velocity.X < 0 || body.Position.X > radius && body.Velocity.X > 0 {
		body.Velocity.X = -body.Velocity.X
	}
	if body.Position.Y < -radius && body.Velocity.Y < 0 || body.Position.Y > radius && body.Velocity.Y > 0 {
		body.Velocity.Y = -body.Velocity.Y
	}
	body.Position.X = math32.Min(math32.Max(body.Position.X, -radius), radius)
	body.Position.Y = math32.Min(math32.Max(body.Position.Y, -radius), radius)
}
