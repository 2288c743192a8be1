// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package physics

import (
	"encoding/json"
	"fmt"
	"github.com/chewxy/math32"
)

const Pi = Angle(math32.Pi)

// Angle is a rotation in radians, counterclockwise from the positive x axis.
type Angle float32

func ToAngle(radians float32) Angle {
	return Angle(radians)
}

func (angle Angle) Float() float32 {
	return float32(angle)
}

// Vec2f returns the unit vector pointing in the direction of angle.
func (angle Angle) Vec2f() Vec2f {
	sin, cos := math32.Sincos(float32(angle))
	return Vec2f{
		X: cos,
		Y: sin,
	}
}

func (angle Angle) Diff(otherAngle Angle) (difference Angle) {
	difference = angle - otherAngle
	const mod = Angle(math32.Pi * 2)

	if difference >= mod || difference < -mod {
		difference = Angle(math32.Mod(float32(difference), float32(mod)))
	}

	if difference < -Pi {
		difference += Pi * 2
	} else if difference >= Pi {
		difference -= Pi * 2
	}
	return
}

func (angle Angle) Abs() Angle {
	return Angle(math32.Abs(float32(angle)))
}

func (angle Angle) Inv() Angle {
	return angle + Pi
}

func (angle Angle) String() string {
	return fmt.Sprintf("%.01f degrees", float32(angle)*180/math32.Pi)
}

func (angle Angle) MarshalJSON() ([]byte, error) {
	return json.Marshal(angle.Float())
}

func (angle *Angle) UnmarshalJSON(b []byte) error {
	var f float32
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return fmt.Errorf("invalid angle: %f", f)
	}
	*angle = ToAngle(f)
	return nil
}
