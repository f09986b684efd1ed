// Package gait implements the walking controller for a bipedal robot:
// an inverse-kinematics solver for each leg, the multi-phase gait state
// machine that drives both feet through a step cycle, and the mapper that
// turns solved joint angles into actuator commands.
package gait

// Side identifies a leg. The integer values double as indexes into the
// per-foot arrays kept by the state machine.
type Side int

const (
	Left  Side = 0
	Right Side = 1
)

// Other returns the opposite side.
func (s Side) Other() Side {
	return s ^ 1
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// LegAngles holds the four controlled joint angles of one leg, in radians.
type LegAngles struct {
	HipPitch   float64
	HipRoll    float64
	Knee       float64
	AnklePitch float64
}

// JointAngles is the solved output of one tick, for both legs.
type JointAngles struct {
	Legs [2]LegAngles
}

// JointName identifies a joint in the actuator command set.
type JointName string

// Joint names as the motor-control service knows them.
const (
	LeftHipYaw    JointName = "left_hip_yaw"
	LeftHipRoll   JointName = "left_hip_roll"
	LeftHipPitch  JointName = "left_hip_pitch"
	LeftKnee      JointName = "left_knee"
	LeftAnkle     JointName = "left_ankle"
	RightHipYaw   JointName = "right_hip_yaw"
	RightHipRoll  JointName = "right_hip_roll"
	RightHipPitch JointName = "right_hip_pitch"
	RightKnee     JointName = "right_knee"
	RightAnkle    JointName = "right_ankle"
)

// LegJoints returns all commanded leg joints in a fixed order.
func LegJoints() []JointName {
	return []JointName{
		LeftHipYaw,
		LeftHipRoll,
		LeftHipPitch,
		LeftKnee,
		LeftAnkle,
		RightHipYaw,
		RightHipRoll,
		RightHipPitch,
		RightKnee,
		RightAnkle,
	}
}
