// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"github.com/chewxy/math32"
	"testing"
)

func TestAABB_ExpandTo(t *testing.T) {
	var aabb AABB
	aabb.Clear()
	if !aabb.Empty() {
		t.Fatalf("expected cleared AABB to be empty, got %+v", aabb)
	}
	// Sentinel extents, no flag
	if expected := AABBFromExtents(math32.MaxFloat32, -math32.MaxFloat32, math32.MaxFloat32, -math32.MaxFloat32); aabb != expected {
		t.Errorf("expected cleared AABB %+v, got %+v", expected, aabb)
	}

	aabb.ExpandTo(Vec2f{X: 1, Y: 2})
	if aabb != AABBFromExtents(1, 1, 2, 2) {
		t.Errorf("expected first point to set all extents, got %+v", aabb)
	}
	if aabb.Empty() {
		t.Errorf("expected AABB containing a point to not be empty")
	}

	aabb.ExpandTo(Vec2f{X: -3, Y: 5})
	aabb.ExpandTo(Vec2f{X: 0, Y: 0})
	if expected := AABBFromExtents(-3, 1, 0, 5); aabb != expected {
		t.Errorf("expected %+v, got %+v", expected, aabb)
	}

	if aabb.Width() != 4 || aabb.Height() != 5 {
		t.Errorf("unexpected size %fx%f", aabb.Width(), aabb.Height())
	}
	if center := aabb.Center(); center != (Vec2f{X: -1, Y: 2.5}) {
		t.Errorf("unexpected center %v", center)
	}

	aabb.Clear()
	if !aabb.Empty() {
		t.Errorf("expected AABB to be empty after Clear, got %+v", aabb)
	}
}

func TestAABB_Intersects(t *testing.T) {
	unit := AABBFromExtents(-0.5, 0.5, -0.5, 0.5)

	tests := []struct {
		name     string
		other    AABB
		expected bool
	}{
		{"same", unit, true},
		{"overlap", AABBFromExtents(0, 1, -0.5, 0.5), true},
		{"inside", AABBFromExtents(-0.1, 0.1, -0.1, 0.1), true},
		{"touching", AABBFromExtents(0.5, 1.5, -0.5, 0.5), false},
		{"apart", AABBFromExtents(1.5, 2.5, -0.5, 0.5), false},
		{"apart vertically", AABBFromExtents(-0.5, 0.5, 1, 2), false},
	}

	for _, test := range tests {
		if actual := unit.Intersects(test.other); actual != test.expected {
			t.Errorf("%s: expected %t, got %t", test.name, test.expected, actual)
		}
		if actual := test.other.Intersects(unit); actual != test.expected {
			t.Errorf("%s (swapped): expected %t, got %t", test.name, test.expected, actual)
		}
	}

	var empty AABB
	empty.Clear()
	if unit.Intersects(empty) || empty.Intersects(unit) {
		t.Errorf("expected empty AABB to intersect nothing")
	}
}

func TestAABB_Contains(t *testing.T) {
	unit := AABBFromExtents(-0.5, 0.5, -0.5, 0.5)

	for _, point := range []Vec2f{{}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0}} {
		if !unit.Contains(point) {
			t.Errorf("expected %v to be contained", point)
		}
	}
	for _, point := range []Vec2f{{X: 0.51}, {Y: -0.6}, {X: 1, Y: 1}} {
		if unit.Contains(point) {
			t.Errorf("expected %v to not be contained", point)
		}
	}
}
