// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

// Body is a rigid body in the world. It exclusively owns its Shape.
type Body struct {
	Transform
	Velocity        Vec2f
	AngularVelocity Angle
	ID              BodyID
	Mass            float32
	Shape           Shape
	Label           string
}

// NewBody creates a Body without a Shape. mass <= 0 is treated as 1.
func NewBody(position Vec2f, direction Angle, mass float32) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		Transform: Transform{Position: position, Direction: direction},
		Mass:      mass,
	}
}

// NewRectBody creates a Body with a RectShape of the given dimensions.
func NewRectBody(position Vec2f, direction Angle, mass, width, height float32) *Body {
	body := NewBody(position, direction, mass)
	body.SetShape(NewRectShape(body, width, height, 0))
	return body
}

// SetShape gives body a new Shape, destroying the old one if any.
func (body *Body) SetShape(shape Shape) {
	if body.Shape != nil && body.Shape != shape {
		body.Shape.Destroy()
	}
	body.Shape = shape
}

// GlobalPosition maps a point in body's local frame to world space.
func (body *Body) GlobalPosition(local Vec2f) Vec2f {
	return body.Global(local)
}

// RelativePosition expresses other's local point in reference's local frame.
func RelativePosition(reference, other *Body, otherLocal Vec2f) Vec2f {
	return reference.Local(other.Global(otherLocal))
}

// Integrate moves body by its velocities over seconds. Direction stays in [-Pi, Pi).
func (body *Body) Integrate(seconds float32) {
	body.Position = body.Position.AddScaled(body.Velocity, seconds)
	body.Direction = (body.Direction + body.AngularVelocity*Angle(seconds)).Diff(0)
}

// UpdateAABB refreshes the world space AABB of body's Shape.
// It must be called after moving a Body and before relying on AABB.
func (body *Body) UpdateAABB() {
	if body.Shape != nil {
		body.Shape.UpdateAABB(body)
	}
}

// AABB returns the last computed world space AABB. A Body without a Shape has an empty AABB.
func (body *Body) AABB() AABB {
	if body.Shape == nil {
		var aabb AABB
		aabb.Clear()
		return aabb
	}
	return body.Shape.AABB()
}

// RotationalInertia returns 0 if body has no Shape.
func (body *Body) RotationalInertia() float32 {
	if body.Shape == nil {
		return 0
	}
	return body.Shape.RotationalInertia()
}

// Close is called when a Body is removed from a World. It destroys the Shape.
func (body *Body) Close() {
	if body.Shape != nil {
		body.Shape.Destroy()
		body.Shape = nil
	}
}
