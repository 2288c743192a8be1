// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	"sort"
)

const (
	frequency       = 0.013
	shapeFrequency  = 0.041
	motionFrequency = 0.007

	// Offset samples from the lattice where perlin noise is always 0
	latticeOffset = 0.37

	// MinSize and MaxSize bound the width and height of a Placement.
	MinSize = 1
	MaxSize = 8
	// MaxSpeed bounds the speed of a Placement.
	MaxSpeed = 4
	// MaxSpin bounds the angular velocity of a Placement.
	MaxSpin = 0.5
)

// Placement is where and how a box is spawned.
type Placement struct {
	Position        physics.Vec2f
	Direction       physics.Angle
	Velocity        physics.Vec2f
	AngularVelocity physics.Angle
	Width           float32
	Height          float32
}

// Generator lays out boxes using perlin noise.
type Generator struct {
	density *perlin.Perlin // where boxes are
	shape   *perlin.Perlin // size and direction
	motion  *perlin.Perlin // velocity
}

// New creates a new Generator with a seed.
func New(seed int64) *Generator {
	return &Generator{
		density: perlin.NewPerlin(2, 2, 3, seed),
		shape:   perlin.NewPerlin(1.5, 2, 2, seed+1),
		motion:  perlin.NewPerlin(2, 3, 2, seed+2),
	}
}

// Generate returns count Placements inside the square of radius around the origin.
// The world is divided into a grid of at least 2*count cells and the densest cells get a box.
// The result only depends on the seed, radius and count.
func (g *Generator) Generate(radius float32, count int) []Placement {
	if count <= 0 || !(radius > 0) {
		return nil
	}

	cells := int(math32.Ceil(math32.Sqrt(float32(count * 2))))
	spacing := radius * 2 / float32(cells)

	type candidate struct {
		index   int
		density float64
	}

	candidates := make([]candidate, 0, cells*cells)
	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			x, y := g.cellSample(i, j, spacing, radius)
			candidates = append(candidates, candidate{
				index:   i + j*cells,
				density: g.density.Noise2D(x*frequency+latticeOffset, y*frequency+latticeOffset),
			})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].density > candidates[b].density
	})

	placements := make([]Placement, count)
	for n := range placements {
		index := candidates[n].index
		x, y := g.cellSample(index%cells, index/cells, spacing, radius)
		placements[n] = g.place(x, y, spacing)
	}
	return placements
}

// cellSample returns the center of cell (i, j).
func (g *Generator) cellSample(i, j int, spacing, radius float32) (x, y float64) {
	x = float64((float32(i)+0.5)*spacing - radius)
	y = float64((float32(j)+0.5)*spacing - radius)
	return
}

func (g *Generator) place(x, y float64, spacing float32) Placement {
	sx, sy := x*shapeFrequency+latticeOffset, y*shapeFrequency+latticeOffset
	mx, my := x*motionFrequency+latticeOffset, y*motionFrequency+latticeOffset

	// Boxes shouldn't be larger than their cell or they spawn overlapping
	maxSize := math32.Min(MaxSize, spacing*0.5)
	minSize := math32.Min(MinSize, maxSize)

	return Placement{
		Position:        physics.Vec2f{X: float32(x), Y: float32(y)},
		Direction:       physics.ToAngle(unit(g.shape.Noise2D(sx, sy)) * math32.Pi),
		Velocity:        physics.Vec2f{X: unit(g.motion.Noise2D(mx, my)), Y: unit(g.motion.Noise2D(my, mx))}.Mul(MaxSpeed * 0.5),
		AngularVelocity: physics.ToAngle(unit(g.motion.Noise2D(mx+latticeOffset, my)) * MaxSpin),
		Width:           physics.Lerp(minSize, maxSize, unit(g.shape.Noise2D(sy, sx))*0.5+0.5),
		Height:          physics.Lerp(minSize, maxSize, unit(g.shape.Noise2D(sx+latticeOffset, sy))*0.5+0.5),
	}
}

// unit converts noise to float32 in [-1, 1].
func unit(noise float64) float32 {
	return math32.Max(-1, math32.Min(1, float32(noise)))
}
