package gait

import (
	"fmt"
	"math"
)

// Parameters are the tunable gait settings. They are validated once at
// Machine construction; callers may swap them at runtime through
// Machine.SetParameters, which stages the change until the next step
// boundary so a step in flight is never retuned.
type Parameters struct {
	// StepLength is the forward travel of one step, in mm.
	StepLength float64 `json:"step_length"`

	// StepCycleLength is the number of ticks in one full step cycle.
	StepCycleLength int `json:"step_cycle_length"`

	// DoubleSupportFraction is the fraction of the cycle spent with both
	// feet on the ground, in [0, 1).
	DoubleSupportFraction float64 `json:"double_support_fraction"`

	// MaxFootLift is the peak swing-foot lift, in mm.
	MaxFootLift float64 `json:"max_foot_lift"`

	// LateralFootShift is the amplitude of the side-to-side weight shift,
	// in mm. Zero disables lateral motion; the sign sets the convention for
	// which way the shift leans, so a mirrored gait negates it.
	LateralFootShift float64 `json:"lateral_foot_shift"`

	// BaseStanceWidth is how far each foot sits out from the hip, in mm.
	BaseStanceWidth float64 `json:"base_stance_width"`

	// HipPitchOffset is the nominal forward lean, in radians. The balance
	// corrector subtracts its pitch correction from this each tick.
	HipPitchOffset float64 `json:"hip_pitch_offset"`

	// RollOffset is a fixed hip-roll bias, in radians.
	RollOffset float64 `json:"roll_offset"`
}

// DefaultParameters is the walking tune used on the real robot.
func DefaultParameters() Parameters {
	return Parameters{
		StepLength:            10.0,
		StepCycleLength:       20,
		DoubleSupportFraction: 0.4,
		MaxFootLift:           10.0,
		LateralFootShift:      12.0,
		BaseStanceWidth:       2.0,
		HipPitchOffset:        radians(20),
		RollOffset:            0,
	}
}

// SlowParameters is a conservative tune for balance-corrected walking:
// a much longer cycle, shorter steps, and a lower lift.
func SlowParameters() Parameters {
	return Parameters{
		StepLength:            5.0,
		StepCycleLength:       200,
		DoubleSupportFraction: 0.4,
		MaxFootLift:           2.0,
		LateralFootShift:      0,
		BaseStanceWidth:       2.0,
		HipPitchOffset:        radians(15),
		RollOffset:            0,
	}
}

// Validate rejects settings the state machine cannot run with. It is the
// only failure channel of the controller; ticks never fail.
func (p Parameters) Validate() error {
	if p.StepCycleLength <= 0 {
		return fmt.Errorf("step cycle length must be positive, got %d", p.StepCycleLength)
	}
	if p.DoubleSupportFraction < 0 || p.DoubleSupportFraction >= 1 {
		return fmt.Errorf("double support fraction must be in [0, 1), got %v", p.DoubleSupportFraction)
	}
	if p.StepLength < 0 {
		return fmt.Errorf("step length must not be negative, got %v", p.StepLength)
	}
	if p.MaxFootLift < 0 {
		return fmt.Errorf("max foot lift must not be negative, got %v", p.MaxFootLift)
	}
	if p.BaseStanceWidth < 0 {
		return fmt.Errorf("base stance width must not be negative, got %v", p.BaseStanceWidth)
	}
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
