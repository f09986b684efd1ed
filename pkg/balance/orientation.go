// Package balance closes the loop between inertial feedback and the gait:
// it filters the body orientation, estimates how fast the robot is tipping,
// and produces bounded pitch/roll corrections for the gait machine.
package balance

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is a body attitude sample in radians. Roll is rotation about
// the forward axis, pitch about the lateral axis; positive pitch leans the
// robot forward.
type Orientation struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// FromQuaternion extracts intrinsic x-y-z Euler angles from an IMU
// quaternion. The quaternion is normalized first; a degenerate (near-zero)
// quaternion yields the identity orientation.
func FromQuaternion(q quat.Number) Orientation {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-12 {
		return Orientation{}
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	// asin argument clamped so rounding at the gimbal poles cannot leave
	// the domain.
	sinPitch := 2 * (w*y - z*x)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}

	return Orientation{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(sinPitch),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}
