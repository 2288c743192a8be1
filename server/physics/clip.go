// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

// LiangBarsky clips the segment [p0, p1] against the closed box.
// found is false if no part of the segment is inside box.
// An endpoint that doesn't get clipped is returned unchanged, so it can be compared to the input with ==.
func LiangBarsky(box AABB, p0, p1 Vec2f) (c0, c1 Vec2f, found bool) {
	d := p1.Sub(p0)
	t0, t1 := float32(0), float32(1)

	// Left, right, bottom, top
	p := [4]float32{-d.X, d.X, -d.Y, d.Y}
	q := [4]float32{p0.X - box.Left, box.Right - p0.X, p0.Y - box.Bottom, box.Top - p0.Y}

	for i := range p {
		if p[i] == 0 {
			// Parallel and outside
			if q[i] < 0 {
				return
			}
			continue
		}

		t := q[i] / p[i]
		if p[i] < 0 {
			// Entering
			if t > t1 {
				return
			}
			if t > t0 {
				t0 = t
			}
		} else {
			// Leaving
			if t < t0 {
				return
			}
			if t < t1 {
				t1 = t
			}
		}
	}

	c0, c1 = p0, p1
	if t0 > 0 {
		c0 = p0.AddScaled(d, t0)
	}
	if t1 < 1 {
		c1 = p0.AddScaled(d, t1)
	}
	found = true
	return
}
