package physics

import "math"

// Tilt is the acceleration and friction derived from a board tilt.
type Tilt struct {
	AX float64
	AY float64
	FX float64
	FY float64
}

// Angles is a device orientation report in degrees.
// Beta tilts the board front to back, Gamma left to right.
type Angles struct {
	Beta  float64 `json:"beta" msgpack:"beta"`
	Gamma float64 `json:"gamma" msgpack:"gamma"`
}

// Valid reports whether both angles are finite numbers.
func (a Angles) Valid() bool {
	return finite(a.Beta) && finite(a.Gamma)
}

// Level is the tilt of a flat board: no acceleration, full friction.
func Level() Tilt {
	return fromRotation(0, 0)
}

// FromAngles converts a device orientation into board tilt.
// Non-finite angles are read as a flat board.
func FromAngles(beta, gamma float64) Tilt {
	if !finite(beta) || !finite(gamma) {
		return Level()
	}
	return fromRotation(beta*Sensitivity, gamma*Sensitivity)
}

// FromJoystick converts a joystick displacement in pixels into board tilt.
func FromJoystick(dx, dy float64) Tilt {
	if !finite(dx) || !finite(dy) {
		return Level()
	}
	return fromRotation(clamp(dy, JoystickLimit)*Sensitivity, clamp(dx, JoystickLimit)*Sensitivity)
}

// fromRotation takes board rotations around the x and y axes in degrees.
func fromRotation(rotX, rotY float64) Tilt {
	rx := rotX / 180 * math.Pi
	ry := rotY / 180 * math.Pi
	return Tilt{
		AX: Gravity * math.Sin(ry),
		AY: Gravity * math.Sin(rx),
		FX: Gravity * math.Cos(ry) * Friction,
		FY: Gravity * math.Cos(rx) * Friction,
	}
}

// MeanAngles averages the valid reports. No valid report yields a flat board.
func MeanAngles(reports []Angles) Angles {
	var sum Angles
	n := 0
	for _, r := range reports {
		if !r.Valid() {
			continue
		}
		sum.Beta += r.Beta
		sum.Gamma += r.Gamma
		n++
	}
	if n == 0 {
		return Angles{}
	}
	return Angles{Beta: sum.Beta / float64(n), Gamma: sum.Gamma / float64(n)}
}
