// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

type (
	// Contact is a point where two Bodies touch, consumed by a solver.
	Contact struct {
		Position Vec2f `json:"position"` // world space
		Normal   Vec2f `json:"normal"`   // unit length, out of the reference face
		// Impulse is the accumulated impulse, shared by every Contact of the same Manifold.
		Impulse *Vec2f `json:"-"`
		// Weight is the number of Contacts sharing Impulse.
		Weight    int   `json:"weight"`
		Reference *Body `json:"-"`
		Incident  *Body `json:"-"`
	}

	// Manifold is the set of Contacts from one collision query.
	Manifold struct {
		Reference *Body     `json:"-"`
		Incident  *Body     `json:"-"`
		Normal    Vec2f     `json:"normal"`
		Depth     float32   `json:"depth"` // average penetration of the contacts into the reference face
		Contacts  []Contact `json:"contacts"`
	}
)

// ApplyImpulse adds this Contact's share of impulse to the shared accumulator.
func (contact *Contact) ApplyImpulse(impulse Vec2f) {
	if contact.Impulse == nil || contact.Weight <= 0 {
		return
	}
	*contact.Impulse = contact.Impulse.AddScaled(impulse, 1/float32(contact.Weight))
}

// AccumulatedImpulse returns a copy of the shared accumulator.
func (contact *Contact) AccumulatedImpulse() Vec2f {
	if contact.Impulse == nil {
		return Vec2f{}
	}
	return *contact.Impulse
}
