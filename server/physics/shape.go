// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"fmt"
)

// ShapeType identifies the variant of a Shape for fast filtering.
type ShapeType uint8

const (
	ShapeTypeInvalid ShapeType = iota
	ShapeTypeRect
	// ShapeTypeCircle is reserved, there is no circle Shape yet.
	ShapeTypeCircle
)

var shapeTypeNames = [...]string{
	ShapeTypeInvalid: "invalid",
	ShapeTypeRect:    "rect",
	ShapeTypeCircle:  "circle",
}

func (shapeType ShapeType) String() string {
	if int(shapeType) < len(shapeTypeNames) {
		return shapeTypeNames[shapeType]
	}
	return "invalid"
}

func (shapeType ShapeType) MarshalText() ([]byte, error) {
	return []byte(shapeType.String()), nil
}

func (shapeType *ShapeType) UnmarshalText(text []byte) error {
	for i, name := range shapeTypeNames {
		if i != int(ShapeTypeInvalid) && name == string(text) {
			*shapeType = ShapeType(i)
			return nil
		}
	}
	return fmt.Errorf("invalid shape type %q", text)
}

// Shape is the geometry owned by a Body.
type Shape interface {
	// Type returns the variant of the Shape.
	Type() ShapeType

	// AABB returns the world space AABB as of the last UpdateAABB.
	AABB() AABB

	// UpdateAABB recomputes AABB from body's current transform.
	// Must be called once per step before the broad phase.
	UpdateAABB(body *Body)

	// Collide appends contacts between body (which owns the Shape) and other.
	// Nothing is appended if they are apart or other's Shape isn't supported.
	Collide(body, other *Body, contacts []Contact) []Contact

	// RotationalInertia is the moment of inertia about the local origin.
	RotationalInertia() float32

	// Destroy releases the Shape. It is called by the owning Body.
	Destroy()
}

// Collide dispatches to the Shape of a without the caller knowing the variant.
func Collide(a, b *Body, contacts []Contact) []Contact {
	if a.Shape == nil || b.Shape == nil {
		return contacts
	}
	return a.Shape.Collide(a, b, contacts)
}

// ManifoldCollider is implemented by Shapes that can report the whole Manifold of a collision.
type ManifoldCollider interface {
	CollideManifold(body, other *Body) (Manifold, bool)
}

// CollideManifold is Collide but returns a Manifold. ok is false if the bodies are apart.
// Depth is only known for Shapes that implement ManifoldCollider.
func CollideManifold(a, b *Body) (manifold Manifold, ok bool) {
	if a.Shape == nil || b.Shape == nil {
		return
	}
	if collider, isCollider := a.Shape.(ManifoldCollider); isCollider {
		return collider.CollideManifold(a, b)
	}

	contacts := a.Shape.Collide(a, b, nil)
	if len(contacts) == 0 {
		return
	}
	first := &contacts[0]
	manifold = Manifold{
		Reference: first.Reference,
		Incident:  first.Incident,
		Normal:    first.Normal,
		Contacts:  contacts,
	}
	ok = true
	return
}
