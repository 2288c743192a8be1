// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

// Corner indices of a RectShape. Edge i goes from corner i to corner (i+1)%4.
const (
	BottomLeft = iota
	BottomRight
	TopRight
	TopLeft
)

// RectShape is an oriented rectangle.
type RectShape struct {
	// Corners are relative to the Body's local origin, in the order BottomLeft, BottomRight, TopRight, TopLeft.
	// They are rotated once by the initial angle and never again; the Body's transform is applied when queried.
	Corners [4]Vec2f
	Inertia float32
	box     AABB
}

// NewRectShape creates a width x height RectShape for body, rotated by angle in body's frame.
// It does not install the RectShape on body; use Body.SetShape.
func NewRectShape(body *Body, width, height float32, angle Angle) *RectShape {
	halfWidth := width * 0.5
	halfHeight := height * 0.5

	rect := &RectShape{
		Corners: [4]Vec2f{
			BottomLeft:  {X: -halfWidth, Y: -halfHeight},
			BottomRight: {X: halfWidth, Y: -halfHeight},
			TopRight:    {X: halfWidth, Y: halfHeight},
			TopLeft:     {X: -halfWidth, Y: halfHeight},
		},
		// I = M(a^2 + b^2)/12
		Inertia: body.Mass * (width*width + height*height) / 12,
	}

	for i := range rect.Corners {
		rect.Corners[i] = rect.Corners[i].Rotate(angle)
	}

	rect.box.Clear()
	return rect
}

func (rect *RectShape) Type() ShapeType {
	return ShapeTypeRect
}

func (rect *RectShape) AABB() AABB {
	return rect.box
}

// UpdateAABB does nothing unless rect is body's Shape.
func (rect *RectShape) UpdateAABB(body *Body) {
	if shape, ok := body.Shape.(*RectShape); !ok || shape != rect {
		return
	}

	rect.box.Clear()
	for _, corner := range rect.Corners {
		rect.box.ExpandTo(body.GlobalPosition(corner))
	}
}

// Collide implements Shape.Collide for rect-rect pairs.
// TODO: box-circle once a circle Shape is added.
func (rect *RectShape) Collide(body, other *Body, contacts []Contact) []Contact {
	if _, ok := other.Shape.(*RectShape); !ok || body.Shape != Shape(rect) {
		return contacts
	}
	return CollideRect(body, other, contacts)
}

// CollideManifold implements ManifoldCollider.
func (rect *RectShape) CollideManifold(body, other *Body) (Manifold, bool) {
	if _, ok := other.Shape.(*RectShape); !ok || body.Shape != Shape(rect) {
		return Manifold{}, false
	}
	return CollideRectManifold(body, other)
}

func (rect *RectShape) RotationalInertia() float32 {
	return rect.Inertia
}

func (rect *RectShape) Destroy() {
	rect.Corners = [4]Vec2f{}
	rect.Inertia = 0
	rect.box.Clear()
}

// localAABB is the axis aligned extent of the corners in the Body's local frame.
func (rect *RectShape) localAABB() AABB {
	var box AABB
	box.Clear()
	for _, corner := range rect.Corners {
		box.ExpandTo(corner)
	}
	return box
}
