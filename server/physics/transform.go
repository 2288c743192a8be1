// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

// Transform is a rigid transform from a local frame to world space.
type Transform struct {
	Position  Vec2f `json:"position"`
	Direction Angle `json:"direction"`
}

// Add composes otherTransform (relative to transform) onto transform.
func (transform Transform) Add(otherTransform Transform) Transform {
	transform.Position = transform.Global(otherTransform.Position)
	transform.Direction += otherTransform.Direction
	return transform
}

// Global maps a point in the local frame to world space (rotate, then translate).
func (transform Transform) Global(local Vec2f) Vec2f {
	return local.Rotate(transform.Direction).Add(transform.Position)
}

// Local maps a point in world space to the local frame. It is the inverse of Global.
func (transform Transform) Local(global Vec2f) Vec2f {
	return global.Sub(transform.Position).Rotate(-transform.Direction)
}
