// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sector

import "github.com/SoftbearStudios/rigid2d/server/physics"

// ForBodiesAndOthers implements physics.World.ForBodiesAndOthers
// TODO support multi-threading
func (w *World) ForBodiesAndOthers(bodyCallback func(body *physics.Body) (stop bool, radius float32),
	otherCallback func(body, other *physics.Body) (stop, remove, removeOther bool)) bool {

	canWrite := w.depth == 0 && !w.parallel
	w.addDepth(1)

	width := w.width
	logWidth := w.logWidth
	sectors := w.sectors

	for i := range sectors {
		s := &sectors[i]
		if len(s.bodies) == 0 {
			continue
		}

		id := sliceIndexSectorID(i, width, logWidth)
		for i := 0; i < len(s.bodies); {
			// Position must not be modified
			stopSector, radius := bodyCallback(s.bodies[i])

			if canWrite && len(w.buffered) > 0 {
				w.addBuffered()
			}

			if stopSector {
				w.addDepth(-1)
				return true
			}

			nextI := i + 1 // If continue loop, just set i = nextI

			if radius <= 0.0 {
				i = nextI
				continue
			}

			r2 := radius * radius

			// 'i' can change if bodies are removed so lookup with 'i' each time to get body
			w.forSectorsInRadius(s.bodies[i].Position, radius, func(otherSectorID sectorID, otherSector *sector) (stop bool) {
				for j := 0; j < len(otherSector.bodies); j++ {
					body := s.bodies[i]
					other := otherSector.bodies[j]

					// Out of radius or same body
					if body.Position.DistanceSquared(other.Position) > r2 || body == other {
						continue
					}

					var remove, removeOther bool
					// Position must not be modified
					stop, remove, removeOther = otherCallback(body, other)

					if removeOther {
						if !canWrite {
							panic("cannot write")
						}
						if end := len(otherSector.bodies) - 1; otherSector == s && i == end {
							// This just acknowledges the subsequent w.remove's effect on i
							i = j
						}
						j = w.remove(otherSectorID, otherSector, j, false)
					}

					if remove {
						if !canWrite {
							panic("cannot write")
						}
						nextI--
						i = w.remove(id, s, i, false)
					}

					if canWrite && len(w.buffered) > 0 {
						w.addBuffered()
					}

					// Stop nested iteration if body is removed but don't stop top level iteration
					if remove || stop {
						stopSector = stop
						stop = remove

						break
					}
				}
				return
			})

			if stopSector {
				w.addDepth(-1)
				return true
			}

			i = nextI
		}
	}

	w.addDepth(-1)
	return false
}
