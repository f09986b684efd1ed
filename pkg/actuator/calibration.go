// Package actuator implements the collaborators the control loop talks
// to: a serial servo bus for the real robot and an in-memory simulator.
// Joint-name to servo-ID resolution lives here, as explicit configuration,
// and is invisible to the gait core.
package actuator

import (
	"math"

	"github.com/zbotics/stride/pkg/gait"
)

// ServoCalibration maps one joint onto its servo: the bus ID, the raw
// count at zero degrees, and the counts per full revolution.
type ServoCalibration struct {
	ID           int `json:"id"`
	Center       int `json:"center"`
	CountsPerRev int `json:"counts_per_rev"`
}

// Degrees converts a raw servo count to a joint angle in degrees.
func (c ServoCalibration) Degrees(raw int) float64 {
	if c.CountsPerRev == 0 {
		return 0
	}
	return float64(raw-c.Center) * 360 / float64(c.CountsPerRev)
}

// Raw converts a joint angle in degrees to a raw servo count.
func (c ServoCalibration) Raw(deg float64) int {
	return int(math.Round(deg*float64(c.CountsPerRev)/360)) + c.Center
}

// Calibration holds the servo mapping for all leg joints.
type Calibration map[gait.JointName]ServoCalibration

// DefaultCalibration returns the servo layout of the Z-Bot legs: left leg
// on IDs 31-35, right leg on 41-45, centered at mid-range of a 12-bit
// encoder.
func DefaultCalibration() Calibration {
	ids := map[gait.JointName]int{
		gait.LeftHipYaw:    31,
		gait.LeftHipRoll:   32,
		gait.LeftHipPitch:  33,
		gait.LeftKnee:      34,
		gait.LeftAnkle:     35,
		gait.RightHipYaw:   41,
		gait.RightHipRoll:  42,
		gait.RightHipPitch: 43,
		gait.RightKnee:     44,
		gait.RightAnkle:    45,
	}
	cal := make(Calibration, len(ids))
	for name, id := range ids {
		cal[name] = ServoCalibration{ID: id, Center: 2048, CountsPerRev: 4096}
	}
	return cal
}

// ServoIDs returns the servo IDs of all calibrated joints, in the fixed
// joint order.
func (c Calibration) ServoIDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range gait.LegJoints() {
		if sc, ok := c[name]; ok {
			ids = append(ids, sc.ID)
		}
	}
	return ids
}

// ByID returns the joint name and calibration for a servo ID.
func (c Calibration) ByID(id int) (gait.JointName, ServoCalibration, bool) {
	for name, sc := range c {
		if sc.ID == id {
			return name, sc, true
		}
	}
	return "", ServoCalibration{}, false
}
