// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sector

import (
	"fmt"
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"math"
	"math/bits"
)

const (
	size         = 16        // Meters
	maxLength    = 1<<15 - 1 // size units
	minSectorCap = 4         // Capacity to start sectors with
)

// bufferSectorIndex is a sentinel value to mark that body is in buffer.
var bufferSectorIndex = sectorIndex{sectorID: sectorID{x: math.MinInt16, y: math.MinInt16}, index: -1}

type (
	// World is an implementation of physics.World which divides bodies into sectors
	World struct {
		sectors   []sector                        // sectors stores the bodies in spatial partitions
		buffered  []*physics.Body                 // buffered is bodies added during a read
		bodyIDs   map[physics.BodyID]sectorIndex // bodyIDs stores where to find the bodies
		bodyCount int                             // cached number of bodies
		width     uint16                          // width is cross section in sector space
		logWidth  uint8                           // logWidth is log2(width)
		depth     int8                            // call depth
		parallel  bool                            // no writing during parallel
	}

	// sector is one bucket of the World
	sector struct {
		bodies []*physics.Body
	}
)

// New creates a new World.
func New(radius float32) *World {
	w := &World{
		bodyIDs:  make(map[physics.BodyID]sectorIndex),
		buffered: make([]*physics.Body, 0, 16),
	}

	// Resize allocates World.sectors
	w.Resize(radius)

	return w
}

func (w *World) Count() int {
	return w.bodyCount
}

// AddBody adds a body to the world and assigns its ID
// Cannot add during parallel execution
func (w *World) AddBody(body *physics.Body) physics.BodyID {
	if w.parallel {
		panic("cannot write")
	}
	body.ID = physics.AllocateBodyID(func(id physics.BodyID) bool {
		_, ok := w.bodyIDs[id]
		return ok
	})
	w.bodyCount++

	if w.depth > 0 {
		// Mark used so don't reuse bodyID in buffer
		w.bodyIDs[body.ID] = bufferSectorIndex
		w.buffered = append(w.buffered, body)
	} else {
		w.setBody(body)
	}
	return body.ID
}

// Debug output
func (w *World) Debug() {
	fmt.Printf("sector world: sectors: %d, bodies: %d \n", len(w.sectors), w.Count())
}

// BodyByID gets a body by its id
// Bodies added or moved to another sector during iteration can't be found until it ends
// A body moved by callback is put in its new sector
func (w *World) BodyByID(bodyID physics.BodyID, callback func(body *physics.Body) (remove bool)) {
	fullID, ok := w.bodyIDs[bodyID]
	if !ok || fullID == bufferSectorIndex {
		callback(nil)
		return
	}

	s := w.sector(fullID.sectorID)
	body := s.bodies[fullID.index]
	oldPos := body.Position

	w.addDepth(1)
	remove := callback(body)
	w.addDepth(-1)

	var move bool
	if !remove && body.Position != oldPos {
		move = w.clampedSectorID(body.Position) != fullID.sectorID
	}

	if remove || move {
		if w.parallel {
			panic("cannot write")
		}
		if remove && w.depth != 0 {
			panic("cannot write")
		}
		// Moves during iteration are buffered by remove
		w.remove(fullID.sectorID, s, int(fullID.index), move)
	}

	if w.depth == 0 && len(w.buffered) > 0 {
		w.addBuffered()
	}
}

// Resize grows the World to at least radius, it never shrinks.
func (w *World) Resize(radius float32) {
	w.assertDepth(0)

	intWidth := int(radius*(1.0/size))*2 + 1
	if radius < 0 || intWidth > maxLength/2 {
		panic("radius out of range")
	}

	width := uint16(intWidth)
	if width <= w.width {
		// No resize necessary
		return
	}
	// Round up to a power of 2 so sector IDs can be recovered from slice indices with shifts.
	logWidth := uint8(bits.Len16(width - 1))
	width = 1 << logWidth

	sectors := make([]sector, int(width)*int(width))
	oldSectors := w.sectors

	oldWidth := w.width
	oldLogWidth := w.logWidth

	for i, s := range oldSectors {
		if len(s.bodies) == 0 {
			continue
		}
		sectors[sliceIndexSectorID(i, oldWidth, oldLogWidth).sliceIndex(width)] = s
	}

	w.sectors = sectors
	w.width = width
	w.logWidth = logWidth
}

// Radius is the distance from the origin to the nearest edge of the World.
func (w *World) Radius() float32 {
	return float32(w.width/2) * size
}

// SetParallel turns on parallel execution mode
func (w *World) SetParallel(parallel bool) bool {
	w.assertDepth(0)
	w.parallel = parallel
	return true
}

// addBuffered adds buffered bodies
func (w *World) addBuffered() {
	for i, body := range w.buffered {
		w.setBody(body)

		// Clear pointer
		w.buffered[i] = nil
	}

	// Clear for next use
	w.buffered = w.buffered[:0]
}

// addDepth increases the World function call depth so AddBody adds to buffered
func (w *World) addDepth(depth int8) {
	if !w.parallel {
		w.depth += depth
	}
}

// assertDepth tests the World function call depth for debugging
func (w *World) assertDepth(depth int8) {
	if w.depth != depth {
		panic(fmt.Sprintf("invalid iteration depth %d want %d", w.depth, depth))
	}
}

func (w *World) sector(id sectorID) *sector {
	index := id.sliceIndex(w.width)
	if index == -1 {
		return nil
	}
	return &w.sectors[index]
}

// remove removes a body from a sector given its index and returns new index for loops
// if move body isn't closed and is instead added to a different sector
func (w *World) remove(id sectorID, s *sector, index int, move bool) int {
	body := s.bodies[index]
	if move && w.depth > 0 {
		// Put the body where it belongs once iteration is over
		w.bodyIDs[body.ID] = bufferSectorIndex
		w.buffered = append(w.buffered, body)
	} else if move {
		// Put the body where it belongs
		w.setBody(body)
	} else {
		// Delete the body
		w.bodyCount--
		body.Close()
		delete(w.bodyIDs, body.ID)
	}

	end := len(s.bodies) - 1
	// Move other's sectorIndex pointer
	if index != end {
		s.bodies[index] = s.bodies[end]
		w.bodyIDs[s.bodies[index].ID] = sectorIndex{sectorID: id, index: int32(index)}
	}

	// Clear pointer
	s.bodies[end] = nil
	s.bodies = s.bodies[:end]

	if len(s.bodies) == 0 {
		// Delete slice if no more bodies
		s.bodies = nil
	} else if c := cap(s.bodies) / 2; len(s.bodies)+minSectorCap/2 < c {
		// Shrink to use less memory
		bodies := make([]*physics.Body, len(s.bodies), c)
		copy(bodies, s.bodies)
		s.bodies = bodies
	}

	return index - 1
}

// setBody adds an existing body to its sector and changes its sectorIndex pointer
func (w *World) setBody(body *physics.Body) {
	id := w.clampedSectorID(body.Position)
	s := w.sector(id)

	i := len(s.bodies)
	s.bodies = append(s.bodies, body)

	// Set sectorIndex pointer
	w.bodyIDs[body.ID] = sectorIndex{sectorID: id, index: int32(i)}
}

// clampedSectorID is the sector a body at position is stored in.
// Bodies outside the World are kept in the nearest edge sector, where radius queries may miss them.
func (w *World) clampedSectorID(position physics.Vec2f) sectorID {
	half := int16(w.width / 2)
	return vec2fSectorID(position).min(-half).max(half - 1)
}
