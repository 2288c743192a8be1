// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"fmt"
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

// World holds bodies.
// Bodies are stored by pointer so Contacts can refer to them.
type World interface {
	// AddBody adds a body and assigns its ID
	AddBody(body *Body) BodyID

	// Count returns number of bodies in the world
	// Cannot be called concurrently with writes
	Count() int

	// Debug Prints debug output to os.Stdout
	// Cannot be called concurrently with writes
	Debug()

	// BodyByID Gets a body by its id, calls callback with nil if not found
	// For reading and writing
	BodyByID(bodyID BodyID, callback func(body *Body) (remove bool))

	// ForBodies Iterates all the bodies and returns if stopped early
	// For reading and writing
	ForBodies(callback func(body *Body) (stop, remove bool)) bool

	// ForBodiesInRadius Iterates all the bodies whose position is in a radius and returns if stopped early
	// Only for reading so no adding or modifying bodies
	ForBodiesInRadius(position Vec2f, radius float32, callback func(r float32, body *Body) (stop bool)) bool

	// ForBodiesAndOthers Iterates all the bodies and other bodies in a radius and returns if stopped early
	// For reading and writing
	// Cannot modify position of bodies
	// Skips radii that are <= 0
	ForBodiesAndOthers(bodyCallback func(body *Body) (stop bool, radius float32),
		otherCallback func(body, other *Body) (stop, remove, removeOther bool)) bool

	// Resize sets the max size of the World.
	Resize(radius float32)

	// SetParallel Marks world as ready only for concurrent reads
	// Cannot remove or add during read only mode
	// Returns if can be read concurrently
	SetParallel(parallel bool) bool
}

type testWorld struct {
	world   World
	bodyIDs []BodyID
	radius  int
}

func createTestWorlds(create func(radius int) World, end int) []testWorld {
	var testWorlds []testWorld
	radius := 50
	for i := 64; i <= end; i *= 4 {
		testWorlds = append(testWorlds, createTestWorld(create(radius), i, radius))
		radius *= 2
	}
	return testWorlds
}

// Test checks a World implementation against the behavior every World must have.
func Test(t *testing.T, create func(radius int) World) {
	w := create(100)

	bodies := []*Body{
		NewRectBody(Vec2f{X: 0, Y: 0}, 0, 1, 1, 1),
		NewRectBody(Vec2f{X: 0.5, Y: 0}, 0, 1, 1, 1),
		NewRectBody(Vec2f{X: 40, Y: -40}, Pi/4, 1, 2, 1),
	}

	for _, body := range bodies {
		id := w.AddBody(body)
		if id == BodyIDInvalid || id != body.ID {
			t.Fatalf("expected body to be assigned id %s, got %s", body.ID, id)
		}
	}

	if w.Count() != len(bodies) {
		t.Errorf("expected %d bodies, got %d", len(bodies), w.Count())
	}

	for _, body := range bodies {
		found := false
		w.BodyByID(body.ID, func(b *Body) (_ bool) {
			found = b == body
			return
		})
		if !found {
			t.Errorf("body %s not found by id", body.ID)
		}
	}

	var inRadius int
	w.ForBodiesInRadius(Vec2f{}, 2, func(_ float32, _ *Body) (_ bool) {
		inRadius++
		return
	})
	if inRadius != 2 {
		t.Errorf("expected 2 bodies in radius, got %d", inRadius)
	}

	pairs := 0
	UpdateAABBs(w)
	ForPairs(w, func(a, b *Body) (_ bool) {
		if a.ID >= b.ID {
			t.Errorf("pair %s, %s out of order", a.ID, b.ID)
		}
		pairs++
		return
	})
	if pairs != 1 {
		t.Errorf("expected 1 overlapping pair, got %d", pairs)
	}

	// Moving a body must keep it reachable
	w.ForBodies(func(body *Body) (_, _ bool) {
		if body == bodies[2] {
			body.Position = Vec2f{X: -60, Y: 60}
		}
		return
	})
	found := false
	w.ForBodiesInRadius(Vec2f{X: -60, Y: 60}, 1, func(_ float32, body *Body) (_ bool) {
		found = body == bodies[2]
		return
	})
	if !found {
		t.Errorf("moved body not found at new position")
	}

	w.BodyByID(bodies[2].ID, func(body *Body) (_ bool) {
		body.Position = Vec2f{X: 70, Y: 70}
		return
	})
	found = false
	w.ForBodiesInRadius(Vec2f{X: 70, Y: 70}, 1, func(_ float32, body *Body) (_ bool) {
		found = body == bodies[2]
		return
	})
	if !found {
		t.Errorf("body moved by id not found at new position")
	}

	w.BodyByID(bodies[0].ID, func(b *Body) bool {
		return true
	})
	if w.Count() != len(bodies)-1 {
		t.Errorf("expected %d bodies after removal, got %d", len(bodies)-1, w.Count())
	}
	if bodies[0].Shape != nil {
		t.Errorf("removed body should have its shape destroyed")
	}

	w.BodyByID(bodies[0].ID, func(b *Body) (_ bool) {
		if b != nil {
			t.Errorf("removed body still found")
		}
		return
	})
}

func Bench(b *testing.B, create func(radius int) World, end int) {
	testWorlds := createTestWorlds(create, end)

	for _, w := range testWorlds {
		world := w
		b.Run(fmt.Sprintf("BodyByID/%d", len(world.bodyIDs)), func(b *testing.B) {
			_ = testWorldBodyByID(world, b.N)
		})
	}

	for _, w := range testWorlds {
		world := w
		b.Run(fmt.Sprintf("Iterate/%d", len(world.bodyIDs)), func(b *testing.B) {
			_ = testWorldIterate(world, b.N)
		})
	}

	for _, w := range testWorlds {
		world := w
		b.Run(fmt.Sprintf("Pairs/%d", len(world.bodyIDs)), func(b *testing.B) {
			_ = testWorldPairs(world, b.N)
		})
	}
}

func createTestWorld(world World, bodyCount int, radius int) testWorld {
	bodyIDs := make([]BodyID, bodyCount)

	floatRadius := float32(radius)

	for i := 0; i < bodyCount; i++ {
		pos := Vec2f{X: rand.Float32()*floatRadius*2 - floatRadius, Y: rand.Float32()*floatRadius*2 - floatRadius}
		body := NewRectBody(pos, Angle(rand.Float32()*math32.Pi*2), 1, 1+rand.Float32()*4, 1+rand.Float32()*4)
		bodyIDs[i] = world.AddBody(body)
	}

	return testWorld{
		world:   world,
		bodyIDs: bodyIDs,
		radius:  radius,
	}
}

func testWorldBodyByID(world testWorld, times int) int {
	found := 0

	j := 0
	for i := 0; i < times; i++ {
		world.world.BodyByID(world.bodyIDs[j], func(body *Body) (_ bool) {
			if body != nil {
				found++
			}
			return
		})
		j++
		if j == len(world.bodyIDs) {
			j = 0
		}
	}

	return found
}

func testWorldIterate(world testWorld, times int) int {
	var mass float32

	for i := 0; i < times; {
		world.world.ForBodies(func(body *Body) (stop, _ bool) {
			mass += body.Mass
			i++
			stop = i >= times
			return
		})
	}

	return int(mass)
}

func testWorldPairs(world testWorld, times int) int {
	pairs := 0
	UpdateAABBs(world.world)

	for i := 0; i < times; i++ {
		ForPairs(world.world, func(_, _ *Body) (_ bool) {
			pairs++
			return
		})
	}

	return pairs
}
