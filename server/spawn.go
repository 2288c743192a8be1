// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/noise"
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"time"
)

// Spawn adds count boxes laid out by noise with seed.
// Never spawns more than the Hub's max bodies.
func (h *Hub) Spawn(count int, seed int64) {
	defer h.timeFunction("spawn", time.Now())

	if room := h.maxBodies - h.world.Count(); count > room {
		count = room
	}

	for _, p := range noise.New(seed).Generate(h.worldRadius, count) {
		body := physics.NewRectBody(p.Position, p.Direction, p.Width*p.Height, p.Width, p.Height)
		body.Velocity = p.Velocity
		body.AngularVelocity = p.AngularVelocity
		body.UpdateAABB()
		h.world.AddBody(body)
	}
}
