package gait

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsCoverAllJoints(t *testing.T) {
	cmds := Commands(JointAngles{})

	require.Len(t, cmds, len(LegJoints()))
	for _, name := range LegJoints() {
		_, ok := cmds[name]
		assert.True(t, ok, "missing %s", name)
	}
}

func TestCommandsSignConventions(t *testing.T) {
	angles := JointAngles{}
	angles.Legs[Left] = LegAngles{HipPitch: 0.5, HipRoll: 0.25, Knee: 1.0, AnklePitch: 0.75}
	angles.Legs[Right] = LegAngles{HipPitch: 0.5, HipRoll: 0.25, Knee: 1.0, AnklePitch: 0.75}

	cmds := Commands(angles)
	deg := func(rad float64) float64 { return rad * 180 / math.Pi }

	// Hip yaw is held at zero; the walk never steers.
	assert.Equal(t, 0.0, cmds[LeftHipYaw])
	assert.Equal(t, 0.0, cmds[RightHipYaw])

	// Left leg: hip pitch and roll mirrored at the radian level, and the
	// inverted mounting of the left hip roll servo flips it back.
	assert.InDelta(t, -deg(0.5), cmds[LeftHipPitch], 1e-9)
	assert.InDelta(t, deg(0.25), cmds[LeftHipRoll], 1e-9)
	assert.InDelta(t, deg(1.0), cmds[LeftKnee], 1e-9)
	assert.InDelta(t, deg(0.75), cmds[LeftAnkle], 1e-9)

	// Right leg: knee and ankle mirrored at the command level.
	assert.InDelta(t, deg(0.5), cmds[RightHipPitch], 1e-9)
	assert.InDelta(t, deg(0.25), cmds[RightHipRoll], 1e-9)
	assert.InDelta(t, -deg(1.0), cmds[RightKnee], 1e-9)
	assert.InDelta(t, -deg(0.75), cmds[RightAnkle], 1e-9)
}

func TestCommandsIsStateless(t *testing.T) {
	angles := JointAngles{}
	angles.Legs[Left].HipPitch = 1.2

	first := Commands(angles)
	second := Commands(angles)
	assert.Equal(t, first, second)
}
