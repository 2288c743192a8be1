// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sector

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// ForBodies calls callback for every body. Bodies moved to another sector are visited once.
// In parallel mode callback runs on multiple goroutines and can't stop.
func (w *World) ForBodies(callback func(body *physics.Body) (stop, remove bool)) bool {
	// Even with one cpu, parallel mode defers removals and moves until the end
	if w.parallel {
		return w.forBodiesParallel(callback, runtime.NumCPU())
	}

	canWrite := w.depth == 0
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
		for i := 0; i < len(s.bodies); i++ {
			body := s.bodies[i]
			oldPos := body.Position

			stop, remove := callback(body)

			var move bool
			if body.Position != oldPos {
				if newSectorID := w.clampedSectorID(body.Position); id != newSectorID {
					move = !remove
					remove = true
				}
			}

			if remove {
				if !canWrite {
					panic("cannot write")
				}
				i = w.remove(id, s, i, move)
			}

			if stop {
				w.endForBodies(canWrite)
				return true
			}
		}
	}

	w.endForBodies(canWrite)
	return false
}

// endForBodies adds bodies that were added or moved during ForBodies, so none are visited twice.
func (w *World) endForBodies(canWrite bool) {
	w.addDepth(-1)
	if canWrite && len(w.buffered) > 0 {
		w.addBuffered()
	}
}

func (w *World) forBodiesParallel(callback func(body *physics.Body) (stop, remove bool), cpus int) bool {
	type removal struct {
		physics.BodyID
		move bool
	}

	finished := int64(cpus)
	sliceIndex := int64(0)
	output := make(chan removal, cpus)

	// The workers close when sliceIndex >= len(w.sectors)
	for c := 0; c < cpus; c++ {
		go func(index *int64, out chan<- removal) {
			width := w.width
			logWidth := w.logWidth
			sectors := w.sectors

			for {
				// Process sectorsPerAdd items at a time
				const sectorsPerAdd = 8

				end := int(atomic.AddInt64(index, sectorsPerAdd))
				start := end - sectorsPerAdd

				if end > len(sectors) {
					end = len(sectors)

					if start >= len(sectors) {
						// No more sectors left so last to exit closes the output channel
						if atomic.AddInt64(&finished, -1) == 0 {
							close(output)
						}
						return
					}
				}

				for ; start < end; start++ {
					bodies := sectors[start].bodies

					for _, body := range bodies {
						// alias Vec2f as a uint64 to compare without FP instructions
						oldPos := *(*uint64)(unsafe.Pointer(&body.Position))

						stop, remove := callback(body)
						if stop {
							panic("cannot stop during parallel")
						}

						var move bool
						if *(*uint64)(unsafe.Pointer(&body.Position)) != oldPos {
							id := sliceIndexSectorID(start, width, logWidth)
							if newSectorID := w.clampedSectorID(body.Position); id != newSectorID {
								move = !remove
								remove = true
							}
						}

						if remove {
							// Removals modify other sectors so they are done on one goroutine
							out <- removal{BodyID: body.ID, move: move}
						}
					}
				}
			}
		}(&sliceIndex, output)
	}

	// Collect all removals until last worker exits
	removals := make([]removal, 0, 64)
	for r := range output {
		removals = append(removals, r)
	}

	// Single threaded remover
	for _, r := range removals {
		location, ok := w.bodyIDs[r.BodyID]
		if !ok {
			panic("sectorIndex not found")
		}

		id := location.sectorID
		w.remove(id, w.sector(id), int(location.index), r.move)
	}

	return false
}
