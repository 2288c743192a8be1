// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"runtime"
	"sync"
	"time"
)

// Update sends a Frame message to each Client.
// It's run in parallel because it doesn't write to World
func (h *Hub) Update() {
	defer h.timeFunction("update", time.Now())

	cpus := runtime.NumCPU()
	if cpus > 1 && h.world.SetParallel(true) {
		var wait sync.WaitGroup
		wait.Add(cpus)
		input := make(chan Client, cpus*2)

		for i := 0; i < cpus; i++ {
			go func(hub *Hub, in <-chan Client, wg *sync.WaitGroup) {
				for c := range in {
					hub.updateClient(c)
				}
				wg.Done()
			}(h, input, &wait)
		}

		for _, client := range h.clients.Clients() {
			input <- client
		}

		close(input)
		wait.Wait()

		h.world.SetParallel(false)
	} else {
		for _, client := range h.clients.Clients() {
			h.updateClient(client)
		}
	}
}

func (h *Hub) updateClient(client Client) {
	client.Send(h.frame(client.Data().View))
}

// frame creates a Frame of the bodies in view and the manifolds with a contact in view.
func (h *Hub) frame(view View) *Frame {
	frame := NewFrame()
	frame.Tick = h.tick
	frame.WorldRadius = h.worldRadius
	frame.Paused = h.paused

	h.world.ForBodiesInRadius(view.Position, view.Radius, func(_ float32, body *physics.Body) (_ bool) {
		frame.Bodies = append(frame.Bodies, IDBodyView{
			BodyView: NewBodyView(body),
			BodyID:   body.ID,
		})
		return
	})

	for i := range h.manifolds {
		if manifold := &h.manifolds[i]; view.touches(manifold) {
			frame.addManifold(manifold)
		}
	}

	return frame
}
