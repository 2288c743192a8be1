// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/rigid2d/server/physics"
	"github.com/chewxy/math32"
	"github.com/finnbear/moderation"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	labelLengthMin = 1
	labelLengthMax = 24

	// Largest width or height of a body in meters
	bodySizeMax = 64
	// Largest speed of a body in meters per second
	bodySpeedMax = 100
	// Largest angular velocity of a body in radians per second
	bodySpinMax = physics.Pi * 4
	// Largest radius of a View
	viewRadiusMax = 2048
	// Radius of a View until the client sends one
	viewRadiusDefault = 256
)

// Make sure to add to inboundTypes
type (
	// AddBody adds a rectangular body.
	AddBody struct {
		Label           string        `json:"label"`
		Position        physics.Vec2f `json:"position"`
		Direction       physics.Angle `json:"direction"`
		Velocity        physics.Vec2f `json:"velocity"`
		AngularVelocity physics.Angle `json:"angularVelocity"`
		Width           float32       `json:"width"`
		Height          float32       `json:"height"`
		Mass            float32       `json:"mass"`
	}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Not in inboundTypes, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}

	// MoveBody teleports a body and sets its velocities.
	MoveBody struct {
		BodyID          physics.BodyID `json:"bodyID"`
		Position        physics.Vec2f  `json:"position"`
		Direction       physics.Angle  `json:"direction"`
		Velocity        physics.Vec2f  `json:"velocity"`
		AngularVelocity physics.Angle  `json:"angularVelocity"`
	}

	// Pause pauses or resumes the simulation.
	Pause struct {
		Paused bool `json:"paused"`
	}

	// RemoveBody removes a body.
	RemoveBody struct {
		BodyID physics.BodyID `json:"bodyID"`
	}

	// Step advances a paused simulation by one tick.
	Step struct{}

	// View sets the area a client receives Frames of.
	View struct {
		Position physics.Vec2f `json:"position"`
		Radius   float32       `json:"radius"`
	}
)

func (data AddBody) Process(h *Hub, _ Client) {
	if h.world.Count() >= h.maxBodies {
		return
	}

	if !validSize(data.Width) || !validSize(data.Height) || !h.inWorld(data.Position) {
		return
	}

	label, ok := sanitize(data.Label, labelLengthMin, labelLengthMax)
	if !ok && data.Label != "" {
		return
	}

	body := physics.NewRectBody(data.Position, data.Direction, data.Mass, data.Width, data.Height)
	body.Label = label
	body.Velocity = clampVelocity(data.Velocity)
	body.AngularVelocity = clampSpin(data.AngularVelocity)
	body.UpdateAABB()
	h.world.AddBody(body)
}

func (data MoveBody) Process(h *Hub, _ Client) {
	if !h.inWorld(data.Position) {
		return
	}

	h.world.BodyByID(data.BodyID, func(body *physics.Body) (_ bool) {
		if body == nil {
			return
		}
		body.Position = data.Position
		body.Direction = data.Direction
		body.Velocity = clampVelocity(data.Velocity)
		body.AngularVelocity = clampSpin(data.AngularVelocity)
		body.UpdateAABB()
		return
	})
}

func (data Pause) Process(h *Hub, _ Client) {
	h.paused = data.Paused
}

func (data RemoveBody) Process(h *Hub, _ Client) {
	h.world.BodyByID(data.BodyID, func(body *physics.Body) bool {
		return body != nil
	})
}

func (data Step) Process(h *Hub, _ Client) {
	if !h.paused {
		return
	}
	h.Physics(float32(h.updatePeriod.Seconds()))
}

func (data View) Process(_ *Hub, client Client) {
	radius := data.Radius
	if !(radius > 0) || radius > viewRadiusMax {
		radius = viewRadiusMax
	}
	client.Data().View = View{Position: data.Position, Radius: radius}
}

func (data InvalidInbound) Process(_ *Hub, _ Client) {
	log.Println("invalid inbound processed:", data.messageType)
}

func validSize(size float32) bool {
	return size > 0 && size <= bodySizeMax
}

func clampVelocity(velocity physics.Vec2f) physics.Vec2f {
	if length := velocity.Length(); length > bodySpeedMax {
		return velocity.Mul(bodySpeedMax / length)
	} else if math32.IsNaN(length) {
		return physics.Vec2f{}
	}
	return velocity
}

func clampSpin(spin physics.Angle) physics.Angle {
	if math32.IsNaN(spin.Float()) {
		return 0
	}
	return physics.Angle(math32.Min(math32.Max(spin.Float(), -bodySpinMax.Float()), bodySpinMax.Float()))
}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	// Remove spaces
	str = strings.TrimSpace(in)
	str = strings.TrimFunc(str, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank

		// https://www.compart.com/en/unicode/U+2800
		// https://www.compart.com/en/unicode/U+200B
		return r == 0x2800 || r == 0x200B
	})

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

// sanitize makes a label printable, bounds its length, and censors it.
// ok is false if the label can't be used at all.
func sanitize(text string, low, high int) (string, bool) {
	// Brackets are used in formatting
	// * is used for censoring
	const removals = "()[]{}*"
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(removals, r) {
			return -1
		}
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, low, high)
	if !ok {
		return "", false
	}

	result := moderation.Scan(text)
	if result.Is(moderation.Inappropriate) {
		if result.Is(moderation.Inappropriate & moderation.Moderate) {
			return "", false
		}
		text, _ = moderation.Censor(text, moderation.Inappropriate)
	}

	return text, true
}
