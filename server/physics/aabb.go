// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"github.com/chewxy/math32"
)

// AABB is an axis-aligned bounding box.
// A cleared AABB is empty (Left > Right) until the first ExpandTo.
type AABB struct {
	Left   float32 `json:"left"`
	Right  float32 `json:"right"`
	Bottom float32 `json:"bottom"`
	Top    float32 `json:"top"`
}

// AABBFromExtents constructs an AABB directly from its extents.
func AABBFromExtents(minX, maxX, minY, maxY float32) AABB {
	return AABB{
		Left:   minX,
		Right:  maxX,
		Bottom: minY,
		Top:    maxY,
	}
}

// Clear resets the AABB so it contains no points.
func (a *AABB) Clear() {
	a.Left = math32.MaxFloat32
	a.Right = -math32.MaxFloat32
	a.Bottom = math32.MaxFloat32
	a.Top = -math32.MaxFloat32
}

// ExpandTo grows the AABB to include point. The first call after Clear sets all extents to point.
func (a *AABB) ExpandTo(point Vec2f) {
	a.Left = math32.Min(a.Left, point.X)
	a.Right = math32.Max(a.Right, point.X)
	a.Bottom = math32.Min(a.Bottom, point.Y)
	a.Top = math32.Max(a.Top, point.Y)
}

// Empty is true if no points have been included since Clear.
func (a AABB) Empty() bool {
	return a.Left > a.Right || a.Bottom > a.Top
}

// Intersects a and b have overlapping interiors (touching boxes don't intersect).
func (a AABB) Intersects(b AABB) bool {
	return a.Left < b.Right && b.Left < a.Right && a.Bottom < b.Top && b.Bottom < a.Top
}

// Contains point is inside or on the boundary of a.
func (a AABB) Contains(point Vec2f) bool {
	return a.Left <= point.X && point.X <= a.Right && a.Bottom <= point.Y && point.Y <= a.Top
}

func (a AABB) Center() Vec2f {
	return Vec2f{X: (a.Left + a.Right) * 0.5, Y: (a.Bottom + a.Top) * 0.5}
}

func (a AABB) Width() float32 {
	return a.Right - a.Left
}

func (a AABB) Height() float32 {
	return a.Top - a.Bottom
}

// Radius is the distance from the center to a corner.
func (a AABB) Radius() float32 {
	return math32.Hypot(a.Width(), a.Height()) * 0.5
}
