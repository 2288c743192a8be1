// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

// Outward normals of the faces of a clip box, in the order left, bottom, right, top.
// Ties in penetration depth go to the earlier face.
var faceNormals = [4]Vec2f{
	{X: -1},
	{Y: -1},
	{X: 1},
	{Y: 1},
}

// rectPass is the result of clipping the incident Body against the reference Body.
// Contact positions and normal are in the reference Body's local frame.
type rectPass struct {
	reference, incident *Body
	contacts            []Contact
	normal              Vec2f
	depth               float32 // sum over contacts
}

func (pass *rectPass) add(position Vec2f) {
	pass.contacts = append(pass.contacts, Contact{
		Position:  position,
		Reference: pass.reference,
		Incident:  pass.incident,
	})
}

// CollideRect appends the contacts between two Bodies with RectShapes.
// Both Shapes must be *RectShape; Collide only calls it when they are.
// Nothing is appended if the Bodies are apart.
func CollideRect(self, incident *Body, contacts []Contact) []Contact {
	manifold, ok := CollideRectManifold(self, incident)
	if !ok {
		return contacts
	}
	return append(contacts, manifold.Contacts...)
}

// CollideRectManifold is CollideRect but returns the whole Manifold. ok is false if the Bodies are apart.
//
// The incident Body is clipped against self, then the roles are swapped and it is done again.
// The contact normal of a pass is the face of the reference box with the least total penetration,
// which is only reliable while relative velocity is small (no continuous collision detection).
// The pass with the smaller total penetration wins, the first one on ties.
func CollideRectManifold(self, incident *Body) (manifold Manifold, ok bool) {
	passes := [2]rectPass{
		clipRect(self, incident),
		clipRect(incident, self),
	}

	winner := -1
	for i := range passes {
		// A pass that found nothing is not a candidate
		if len(passes[i].contacts) == 0 {
			continue
		}
		if winner == -1 || passes[i].depth < passes[winner].depth {
			winner = i
		}
	}

	if winner == -1 {
		return
	}
	pass := &passes[winner]

	// Back to world space
	reference := pass.reference
	normal := pass.normal.Rotate(reference.Direction)
	impulse := new(Vec2f)

	for i := range pass.contacts {
		contact := &pass.contacts[i]
		contact.Position = reference.GlobalPosition(contact.Position)
		contact.Normal = normal
		contact.Impulse = impulse
		contact.Weight = len(pass.contacts)
	}

	manifold = Manifold{
		Reference: reference,
		Incident:  pass.incident,
		Normal:    normal,
		Depth:     pass.depth / float32(len(pass.contacts)),
		Contacts:  pass.contacts,
	}
	ok = true
	return
}

// clipRect clips every edge of incident against the local box of reference.
func clipRect(reference, incident *Body) (pass rectPass) {
	pass.reference = reference
	pass.incident = incident

	referenceRect := reference.Shape.(*RectShape)
	incidentRect := incident.Shape.(*RectShape)

	var corners [4]Vec2f
	for i, corner := range incidentRect.Corners {
		corners[i] = RelativePosition(reference, incident, corner)
	}

	box := referenceRect.localAABB()

	// Corners found inside the box, added once at the end to prevent duplicates
	var interior [4]bool

	for i := range corners {
		i1 := (i + 1) % len(corners)
		p0, p1 := corners[i], corners[i1]

		c0, c1, found := LiangBarsky(box, p0, p1)
		if !found || c0 == c1 {
			continue
		}

		// An edge lying on a face has no area inside the box, only its corners count
		onFace := alongFace(box, p0, p1)

		if c0 == p0 {
			interior[i] = true
		} else if !onFace {
			pass.add(c0)
		}

		if c1 == p1 {
			interior[i1] = true
		} else if !onFace {
			pass.add(c1)
		}
	}

	for i, inside := range interior {
		if inside {
			pass.add(corners[i])
		}
	}

	if len(pass.contacts) == 0 {
		return
	}

	pass.normal, pass.depth = contactNormal(box, pass.contacts)
	for i := range pass.contacts {
		pass.contacts[i].Normal = pass.normal
	}
	return
}

// contactNormal returns the normal of the face with the minimum total penetration depth and that depth.
func contactNormal(box AABB, contacts []Contact) (Vec2f, float32) {
	var depths [4]float32
	for _, contact := range contacts {
		p := contact.Position
		depths[0] += p.X - box.Left
		depths[1] += p.Y - box.Bottom
		depths[2] += box.Right - p.X
		depths[3] += box.Top - p.Y
	}

	face := 0
	for i := 1; i < len(depths); i++ {
		if depths[i] < depths[face] {
			face = i
		}
	}
	return faceNormals[face], depths[face]
}

// alongFace is true if the segment [p0, p1] is collinear with a face of box.
func alongFace(box AABB, p0, p1 Vec2f) bool {
	if p0.X == p1.X && (p0.X == box.Left || p0.X == box.Right) {
		return true
	}
	return p0.Y == p1.Y && (p0.Y == box.Bottom || p0.Y == box.Top)
}
