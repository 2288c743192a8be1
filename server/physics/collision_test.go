// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"fmt"
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

func TestCollideRect_Overlapping(t *testing.T) {
	a := NewRectBody(Vec2f{X: 0, Y: 0}, 0, 1, 1, 1)
	b := NewRectBody(Vec2f{X: 0.5, Y: 0}, 0, 1, 1, 1)

	manifold, ok := CollideRectManifold(a, b)
	if !ok {
		t.Fatalf("expected collision")
	}
	if len(manifold.Contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d: %v", len(manifold.Contacts), manifold.Contacts)
	}
	if manifold.Normal != (Vec2f{X: -1}) && manifold.Normal != (Vec2f{X: 1}) {
		t.Errorf("expected horizontal normal, got %v", manifold.Normal)
	}
	if manifold.Depth != 0.5 {
		t.Errorf("expected depth 0.5, got %f", manifold.Depth)
	}
	if manifold.Reference != a || manifold.Incident != b {
		t.Errorf("expected ties to favor self as reference")
	}

	expected := []Vec2f{{X: 0, Y: -0.5}, {X: 0, Y: 0.5}}
	for i, contact := range manifold.Contacts {
		if contact.Position != expected[i] {
			t.Errorf("contact %d: expected %v, got %v", i, expected[i], contact.Position)
		}
	}
}

func TestCollideRect_Apart(t *testing.T) {
	a := NewRectBody(Vec2f{X: 0, Y: 0}, 0, 1, 1, 1)
	b := NewRectBody(Vec2f{X: 2, Y: 0}, 0, 1, 1, 1)

	contacts := CollideRect(a, b, nil)
	if len(contacts) != 0 {
		t.Errorf("expected no contacts, got %v", contacts)
	}

	// Existing contacts are left alone
	existing := []Contact{{Weight: 1}}
	if contacts = CollideRect(a, b, existing); len(contacts) != 1 {
		t.Errorf("expected existing contacts to be kept, got %v", contacts)
	}
}

func TestCollideRect_Nested(t *testing.T) {
	small := NewRectBody(Vec2f{}, 0, 1, 1, 1)
	large := NewRectBody(Vec2f{}, 0, 1, 4, 4)

	for _, order := range [][2]*Body{{small, large}, {large, small}} {
		manifold, ok := CollideRectManifold(order[0], order[1])
		if !ok {
			t.Fatalf("expected collision")
		}

		// The pass with small as reference finds nothing and must not win
		if manifold.Reference != large {
			t.Errorf("expected large to be the reference")
		}
		if len(manifold.Contacts) != 4 {
			t.Fatalf("expected 4 contacts, got %d", len(manifold.Contacts))
		}

		corners := small.Shape.(*RectShape).Corners
		for i, contact := range manifold.Contacts {
			if contact.Position != corners[i] {
				t.Errorf("contact %d: expected corner %v, got %v", i, corners[i], contact.Position)
			}
		}
		if manifold.Depth != 2 {
			t.Errorf("expected depth 2, got %f", manifold.Depth)
		}
	}
}

func TestCollideRect_Touching(t *testing.T) {
	a := NewRectBody(Vec2f{}, 0, 1, 1, 1)

	// Shares an edge: both corners of the edge touch with zero depth
	edge := NewRectBody(Vec2f{X: 1}, 0, 1, 1, 1)
	manifold, ok := CollideRectManifold(a, edge)
	if !ok || len(manifold.Contacts) != 2 || manifold.Depth != 0 {
		t.Errorf("expected 2 contacts with zero depth, got %v %+v", ok, manifold)
	}

	// Shares a single corner
	corner := NewRectBody(Vec2f{X: 1, Y: 1}, 0, 1, 1, 1)
	if contacts := CollideRect(a, corner, nil); len(contacts) != 0 {
		t.Errorf("expected no contacts for touching corners, got %v", contacts)
	}

	// Coincident
	same := NewRectBody(Vec2f{}, 0, 1, 1, 1)
	if contacts := CollideRect(a, same, nil); len(contacts) != 4 {
		t.Errorf("expected 4 contacts for coincident rects, got %v", contacts)
	}
}

func TestCollideRect_Rotated(t *testing.T) {
	// A diamond poking into the right face
	a := NewRectBody(Vec2f{}, 0, 1, 2, 2)
	b := NewRectBody(Vec2f{X: 1 + math32.Sqrt2/2 - 0.1}, Pi/4, 1, 1, 1)

	manifold, ok := CollideRectManifold(a, b)
	if !ok {
		t.Fatalf("expected collision")
	}
	if !approxVec(manifold.Normal, Vec2f{X: 1}) {
		t.Errorf("expected normal out of the right face, got %v", manifold.Normal)
	}
	if manifold.Reference != a {
		t.Errorf("expected a to be the reference")
	}
	if !approx(manifold.Depth, 0.1/3) {
		t.Errorf("expected depth %f, got %f", 0.1/3, manifold.Depth)
	}
	if len(manifold.Contacts) != 3 {
		t.Errorf("expected 3 contacts, got %v", manifold.Contacts)
	}
}

func TestCollideRect_RotatedShape(t *testing.T) {
	// A 2x1 shape turned a quarter within its Body, so it stands 1 wide and 2 tall
	tall := NewBody(Vec2f{}, 0, 1)
	tall.SetShape(NewRectShape(tall, 2, 1, Pi/2))
	square := NewRectBody(Vec2f{X: 0.75}, 0, 1, 1, 1)

	manifold, ok := CollideRectManifold(tall, square)
	if !ok {
		t.Fatalf("expected collision")
	}
	if manifold.Reference != square {
		t.Errorf("expected square to be the reference")
	}
	if len(manifold.Contacts) != 2 {
		t.Fatalf("expected 2 contacts, got %d: %v", len(manifold.Contacts), manifold.Contacts)
	}
	for _, contact := range manifold.Contacts {
		if !approxVec(contact.Position, Vec2f{X: 0.5, Y: 0.5}) && !approxVec(contact.Position, Vec2f{X: 0.5, Y: -0.5}) {
			t.Errorf("expected contact at (0.5, ±0.5), got %v", contact.Position)
		}
	}
	if manifold.Contacts[0].Position.Y*manifold.Contacts[1].Position.Y >= 0 {
		t.Errorf("expected one contact above and one below, got %v", manifold.Contacts)
	}
	if !approxVec(manifold.Normal, Vec2f{X: -1}) {
		t.Errorf("expected normal (-1, 0), got %v", manifold.Normal)
	}
	if !approx(manifold.Depth, 0.25) {
		t.Errorf("expected depth 0.25, got %f", manifold.Depth)
	}

	// Only 1 wide, so it misses a square that an unturned 2x1 shape would reach
	miss := NewRectBody(Vec2f{X: 1.2}, 0, 1, 1, 1)
	if contacts := CollideRect(tall, miss, nil); len(contacts) != 0 {
		t.Errorf("expected no contacts, got %v", contacts)
	}
	wide := NewRectBody(Vec2f{}, 0, 1, 2, 1)
	if contacts := CollideRect(wide, miss, nil); len(contacts) == 0 {
		t.Errorf("expected unturned shape to reach")
	}
}

// Two unit squares half overlapping, with the whole scene turned by direction. Whether an edge lies
// exactly on a face depends on rounding, so the contact count varies between 2 and 4 with the frame,
// but the extra contacts are on the reference face so the total penetration doesn't. Every face of
// the reference ties at a total of 1, so the normal is only pinned to being a face normal.
func TestCollideRect_FrameIndependentPenetration(t *testing.T) {
	directions := []Angle{0, Pi / 2, Pi, ToAngle(0.3)}
	for i := 0; i < 32; i++ {
		directions = append(directions, ToAngle(float32(i)*math32.Pi/16+0.01))
	}

	for _, direction := range directions {
		a := NewRectBody(Vec2f{}, direction, 1, 1, 1)
		b := NewRectBody(Vec2f{X: 0.5}.Rotate(direction), direction, 1, 1, 1)

		manifold, ok := CollideRectManifold(a, b)
		if !ok {
			t.Fatalf("%v: expected collision", direction)
		}

		n := len(manifold.Contacts)
		if n < 2 || n > 4 {
			t.Errorf("%v: expected 2 to 4 contacts, got %d", direction, n)
		}
		if total := manifold.Depth * float32(n); math32.Abs(total-1) > 0.001 {
			t.Errorf("%v: expected total penetration 1, got %f (%d contacts)", direction, total, n)
		}

		if !approx(manifold.Normal.Length(), 1) {
			t.Errorf("%v: expected unit normal, got %v", direction, manifold.Normal)
		}
		if d := math32.Abs(manifold.Normal.Dot(Vec2f{X: 1}.Rotate(direction))); !approx(d, 0) && !approx(d, 1) {
			t.Errorf("%v: expected a face normal, got %v", direction, manifold.Normal)
		}

		for _, contact := range manifold.Contacts {
			if rectDistance(a, contact.Position) > 0.001 || rectDistance(b, contact.Position) > 0.001 {
				t.Errorf("%v: contact %v outside the overlap", direction, contact.Position)
			}
		}
	}
}

func TestCollideRect_SharedContactData(t *testing.T) {
	a := NewRectBody(Vec2f{}, 0, 1, 1, 1)
	b := NewRectBody(Vec2f{X: 0.5, Y: 0.25}, 0.3, 1, 1, 1)

	contacts := CollideRect(a, b, nil)
	if len(contacts) == 0 {
		t.Fatalf("expected contacts")
	}

	first := contacts[0]
	for _, contact := range contacts {
		if contact.Normal != first.Normal {
			t.Errorf("expected shared normal %v, got %v", first.Normal, contact.Normal)
		}
		if contact.Weight != len(contacts) {
			t.Errorf("expected weight %d, got %d", len(contacts), contact.Weight)
		}
		if contact.Impulse == nil || contact.Impulse != first.Impulse {
			t.Errorf("expected one shared impulse")
		}
		if !approx(contact.Normal.Length(), 1) {
			t.Errorf("expected unit normal, got %v", contact.Normal)
		}
	}

	if *first.Impulse != (Vec2f{}) {
		t.Errorf("expected zero impulse, got %v", *first.Impulse)
	}

	// Splitting an impulse across every contact adds up to the whole
	for i := range contacts {
		contacts[i].ApplyImpulse(Vec2f{X: 2, Y: -1})
	}
	if !approxVec(first.AccumulatedImpulse(), Vec2f{X: 2, Y: -1}) {
		t.Errorf("expected accumulated impulse (2, -1), got %v", first.AccumulatedImpulse())
	}
}

func TestCollideRect_Idempotent(t *testing.T) {
	for i := 0; i < 256; i++ {
		a, b := randomRectBody(2), randomRectBody(2)

		first := CollideRect(a, b, nil)
		second := CollideRect(a, b, nil)

		if len(first) != len(second) {
			t.Fatalf("expected %d contacts, got %d", len(first), len(second))
		}
		for j := range first {
			if first[j].Position != second[j].Position || first[j].Normal != second[j].Normal {
				t.Errorf("expected %+v, got %+v", first[j], second[j])
			}
		}
		if len(first) > 0 && first[0].Impulse == second[0].Impulse {
			t.Errorf("expected a new impulse per call")
		}
	}
}

func TestCollideRect_Properties(t *testing.T) {
	const epsilon = 0.001
	var overlapping, separated int

	for i := 0; i < 2048; i++ {
		a, b := randomRectBody(3), randomRectBody(3)
		contacts := CollideRect(a, b, nil)
		swapped := CollideRect(b, a, nil)

		// Symmetric verdict
		if (len(contacts) == 0) != (len(swapped) == 0) {
			t.Errorf("asymmetric collision: %d vs %d contacts", len(contacts), len(swapped))
		}

		switch overlap := satOverlap(a, b); {
		case overlap < -epsilon:
			separated++
			if len(contacts) != 0 {
				t.Errorf("expected no contacts for separated rects, got %d", len(contacts))
			}
		case overlap > epsilon:
			overlapping++
			if len(contacts) == 0 {
				t.Errorf("expected contacts for overlapping rects")
			}
		}

		for _, contact := range contacts {
			da, db := rectDistance(a, contact.Position), rectDistance(b, contact.Position)
			if da > epsilon || db > epsilon {
				t.Errorf("contact %v is outside a rect (%f, %f)", contact.Position, da, db)
			}
			if math32.Abs(da) > epsilon && math32.Abs(db) > epsilon {
				t.Errorf("contact %v is not on a boundary (%f, %f)", contact.Position, da, db)
			}
		}
	}

	if overlapping == 0 || separated == 0 {
		t.Errorf("expected both cases, got %d overlapping and %d separated", overlapping, separated)
	}
}

func TestCollide_Dispatch(t *testing.T) {
	a := NewRectBody(Vec2f{}, 0, 1, 1, 1)
	b := NewRectBody(Vec2f{X: 0.5}, 0, 1, 1, 1)

	if contacts := Collide(a, b, nil); len(contacts) != 2 {
		t.Errorf("expected 2 contacts, got %d", len(contacts))
	}

	shapeless := NewBody(Vec2f{X: 0.5}, 0, 1)
	if contacts := Collide(a, shapeless, nil); len(contacts) != 0 {
		t.Errorf("expected no contacts with shapeless body")
	}
	if _, ok := CollideManifold(shapeless, a); ok {
		t.Errorf("expected no manifold with shapeless body")
	}

	// Another Body's Shape isn't used by the wrong Body
	if contacts := a.Shape.Collide(b, a, nil); len(contacts) != 0 {
		t.Errorf("expected a's shape to ignore b")
	}
}

func BenchmarkCollideRect(b *testing.B) {
	for i := 0; i <= 2; i++ {
		radius := float32(int(1) << i)
		b.Run(fmt.Sprintf("Radius%.0f", radius), func(b *testing.B) {
			const count = 1024
			bodies := make([]*Body, count)
			for i := range bodies {
				bodies[i] = randomRectBody(radius)
			}
			b.ResetTimer()

			var contacts []Contact
			for i := 0; i < b.N; i++ {
				contacts = CollideRect(bodies[i&(count-1)], bodies[(i+count/2)&(count-1)], contacts[:0])
			}
		})
	}
}

func randomRectBody(radius float32) *Body {
	return NewRectBody(
		Vec2f{X: rand.Float32()*radius*2 - radius, Y: rand.Float32()*radius*2 - radius},
		ToAngle(rand.Float32()*math32.Pi*2),
		1+rand.Float32(),
		0.5+rand.Float32()*2,
		0.5+rand.Float32()*2,
	)
}

// rectDistance is the signed distance from a rect's boundary, negative inside.
func rectDistance(body *Body, point Vec2f) float32 {
	rect := body.Shape.(*RectShape)
	half := rect.Corners[TopRight]
	local := body.Local(point).Abs()
	return math32.Max(local.X-half.X, local.Y-half.Y)
}

// satOverlap is the smallest overlap of the projections over every face axis, negative if separated.
func satOverlap(a, b *Body) float32 {
	overlap := float32(math32.MaxFloat32)
	for _, body := range [2]*Body{a, b} {
		for _, axis := range [2]Vec2f{body.Direction.Vec2f(), body.Direction.Vec2f().Rot90()} {
			minA, maxA := project(a, axis)
			minB, maxB := project(b, axis)
			overlap = math32.Min(overlap, math32.Min(maxA-minB, maxB-minA))
		}
	}
	return overlap
}

func project(body *Body, axis Vec2f) (lo, hi float32) {
	lo, hi = math32.MaxFloat32, -math32.MaxFloat32
	for _, corner := range body.Shape.(*RectShape).Corners {
		d := body.GlobalPosition(corner).Dot(axis)
		lo = math32.Min(lo, d)
		hi = math32.Max(hi, d)
	}
	return
}
