// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package single

import (
	"fmt"
	"github.com/SoftbearStudios/rigid2d/server/physics"
)

// A world holds bodies in one map
type World struct {
	bodies map[physics.BodyID]*physics.Body
}

func New() *World {
	return &World{
		bodies: make(map[physics.BodyID]*physics.Body),
	}
}

func (w *World) Count() int {
	return len(w.bodies)
}

func (w *World) AddBody(body *physics.Body) physics.BodyID {
	body.ID = physics.AllocateBodyID(func(id physics.BodyID) bool {
		_, ok := w.bodies[id]
		return ok
	})
	w.bodies[body.ID] = body
	return body.ID
}

func (w *World) BodyByID(bodyID physics.BodyID, callback func(body *physics.Body) (remove bool)) {
	body := w.bodies[bodyID]
	if callback(body) && body != nil {
		w.removeBody(body)
	}
}

func (w *World) ForBodies(callback func(body *physics.Body) (stop, remove bool)) bool {
	for _, body := range w.bodies {
		stop, remove := callback(body)
		if remove {
			w.removeBody(body)
		}
		if stop {
			return true
		}
	}
	return false
}

func (w *World) ForBodiesInRadius(position physics.Vec2f, radius float32, callback func(r float32, body *physics.Body) (stop bool)) bool {
	r2 := radius * radius
	for _, body := range w.bodies {
		r := position.DistanceSquared(body.Position)
		if r > r2 {
			continue
		}
		if callback(r, body) {
			return true
		}
	}
	return false
}

func (w *World) ForBodiesAndOthers(bodyCallback func(body *physics.Body) (stop bool, radius float32),
	otherCallback func(body, other *physics.Body) (stop, remove, removeOther bool)) bool {

	for _, body := range w.bodies {
		stop, radius := bodyCallback(body)
		if stop {
			return true
		}
		if radius <= 0 {
			continue
		}

		r2 := radius * radius
		for _, other := range w.bodies {
			if other == body || body.Position.DistanceSquared(other.Position) > r2 {
				continue
			}

			stopInner, remove, removeOther := otherCallback(body, other)

			if remove {
				w.removeBody(body)
			}

			if removeOther {
				w.removeBody(other)
			}

			if stopInner {
				return true
			}

			// Stop early if body is removed
			if remove {
				break
			}
		}
	}
	return false
}

// Ignore for now
func (w *World) SetParallel(_ bool) bool {
	return false
}

func (w *World) Debug() {
	fmt.Printf("single world: bodies: %d\n", w.Count())
}

func (w *World) Resize(radius float32) {
	// Do nothing
}

func (w *World) removeBody(body *physics.Body) {
	delete(w.bodies, body.ID)
	body.Close()
}
