// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"sync"
)

type (
	// BodyView is what a Client sees of a physics.Body.
	BodyView struct {
		physics.Transform
		Corners [4]physics.Vec2f `json:"corners"` // world space
		Label   string           `json:"label,omitempty"`
		Mass    float32          `json:"mass"`
	}

	// IDBodyView is a BodyView paired with a physics.BodyID for efficiency.
	IDBodyView struct {
		BodyView
		physics.BodyID
	}

	// ManifoldView is what a Client sees of a physics.Manifold.
	ManifoldView struct {
		Reference physics.BodyID  `json:"reference"`
		Incident  physics.BodyID  `json:"incident"`
		Normal    physics.Vec2f   `json:"normal"`
		Depth     float32         `json:"depth"`
		Points    []physics.Vec2f `json:"points"`
	}

	// Frame is a view of the Bodies and Manifolds of one tick near a Client's View.
	// It is dependant on a special marshaller on Frame.Bodies to marshal as a map.
	Frame struct {
		Bodies    []IDBodyView   `json:"bodies,omitempty"`
		Manifolds []ManifoldView `json:"manifolds,omitempty"`

		// Put smaller fields here for packing
		Tick        uint32  `json:"tick"`
		WorldRadius float32 `json:"worldRadius,omitempty"`
		Paused      bool    `json:"paused,omitempty"`
	}

	// Status is a summary of the simulation.
	Status struct {
		Bodies   int    `json:"bodies"`
		Clients  int    `json:"clients"`
		Pairs    int    `json:"pairs"`
		Contacts int    `json:"contacts"`
		Tick     uint32 `json:"tick"`
	}
)

const (
	poolBodiesCap    = 32
	poolManifoldsCap = 16
	poolPointsCap    = 4
)

var framePool = sync.Pool{
	New: func() interface{} {
		return &Frame{
			Bodies:    make([]IDBodyView, 0, poolBodiesCap),
			Manifolds: make([]ManifoldView, 0, poolManifoldsCap),
		}
	},
}

func NewFrame() *Frame {
	return framePool.Get().(*Frame)
}

func (frame *Frame) Pool() {
	// Clear pointers
	for i := range frame.Bodies {
		frame.Bodies[i] = IDBodyView{}
	}
	frame.Bodies = frame.Bodies[:0]

	// Points are reused
	for i := range frame.Manifolds {
		manifold := &frame.Manifolds[i]
		manifold.Points = manifold.Points[:0]
	}

	*frame = Frame{
		Bodies:    frame.Bodies,
		Manifolds: frame.Manifolds[:0],
	}
	framePool.Put(frame)
}

// addManifold appends a ManifoldView of manifold, reusing pooled Points.
func (frame *Frame) addManifold(manifold *physics.Manifold) {
	n := len(frame.Manifolds)
	if n < cap(frame.Manifolds) {
		frame.Manifolds = frame.Manifolds[:n+1]
	} else {
		frame.Manifolds = append(frame.Manifolds, ManifoldView{Points: make([]physics.Vec2f, 0, poolPointsCap)})
	}

	view := &frame.Manifolds[n]
	view.Reference = manifold.Reference.ID
	view.Incident = manifold.Incident.ID
	view.Normal = manifold.Normal
	view.Depth = manifold.Depth
	view.Points = view.Points[:0]
	for i := range manifold.Contacts {
		view.Points = append(view.Points, manifold.Contacts[i].Position)
	}
}

// NewBodyView creates a BodyView of body.
func NewBodyView(body *physics.Body) BodyView {
	view := BodyView{
		Transform: body.Transform,
		Label:     body.Label,
		Mass:      body.Mass,
	}
	if rect, ok := body.Shape.(*physics.RectShape); ok {
		for i, corner := range rect.Corners {
			view.Corners[i] = body.GlobalPosition(corner)
		}
	}
	return view
}

func (frame *Frame) messageType() messageType {
	return "frame"
}

func (status Status) Pool() {}

func (status Status) messageType() messageType {
	return "status"
}
