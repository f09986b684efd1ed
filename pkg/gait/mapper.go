package gait

import "math"

// The actuator service expects degrees with per-joint sign conventions:
// the left leg's hip pitch and roll are mirrored at the radian level, the
// right leg's knee and ankle at the command level, and the left hip roll
// servo is additionally mounted inverted. These come from the physical
// frame and are fixed tables, not computed.

// signFlips lists the joints whose servos are mounted inverted, so the
// final degree value is negated.
var signFlips = map[JointName]bool{
	LeftHipRoll: true,
}

// Commands converts one tick of solved joint angles into the actuator
// command representation: joint name to target angle in degrees. The hip
// yaw joints are held at zero; the walk never steers. Pure, stateless,
// total.
func Commands(a JointAngles) map[JointName]float64 {
	left, right := a.Legs[Left], a.Legs[Right]

	rad := map[JointName]float64{
		LeftHipYaw:  0,
		RightHipYaw: 0,

		LeftHipRoll:  -left.HipRoll,
		LeftHipPitch: -left.HipPitch,
		LeftKnee:     left.Knee,
		LeftAnkle:    left.AnklePitch,

		RightHipRoll:  right.HipRoll,
		RightHipPitch: right.HipPitch,
		RightKnee:     -right.Knee,
		RightAnkle:    -right.AnklePitch,
	}

	cmds := make(map[JointName]float64, len(rad))
	for name, angle := range rad {
		deg := angle * 180 / math.Pi
		if signFlips[name] {
			deg = -deg
		}
		cmds[name] = deg
	}
	return cmds
}
