package gait

import "fmt"

// Geometry holds the physical leg constants. It is immutable for the
// lifetime of a Machine.
type Geometry struct {
	// LegLength is the hip-to-foot distance of a fully extended leg, in mm.
	LegLength float64 `json:"leg_length"`

	// HipForwardOffset is how far the hip sits ahead of the body center, in
	// mm. Foot targets are pulled back by this amount so the feet stay under
	// the body.
	HipForwardOffset float64 `json:"hip_forward_offset"`

	// NominalLegHeight is the hip-to-foot height of the standing stance, in mm.
	NominalLegHeight float64 `json:"nominal_leg_height"`

	// InitialLegHeight is the taller stance the robot boots into before
	// ramping down to nominal, in mm.
	InitialLegHeight float64 `json:"initial_leg_height"`

	// KneeGain and KneeBias define the knee angle as a linear function of
	// the leg-bend angle. The bias keeps the knee from ever straightening
	// fully, which would put the leg at a kinematic singularity.
	KneeGain float64 `json:"knee_gain"`
	KneeBias float64 `json:"knee_bias"`

	// AnklePitchBias keeps the foot sole parallel to the ground under the
	// nominal forward lean, in radians.
	AnklePitchBias float64 `json:"ankle_pitch_bias"`
}

// DefaultGeometry returns the leg constants of the Z-Bot frame.
func DefaultGeometry() Geometry {
	return Geometry{
		LegLength:        180.0,
		HipForwardOffset: 2.04,
		NominalLegHeight: 170.0,
		InitialLegHeight: 180.0,
		KneeGain:         2.0,
		KneeBias:         0.3,
		AnklePitchBias:   0.3,
	}
}

// Validate reports whether the geometry describes a reachable leg.
func (g Geometry) Validate() error {
	if g.LegLength <= 0 {
		return fmt.Errorf("leg length must be positive, got %v", g.LegLength)
	}
	if g.NominalLegHeight <= 0 {
		return fmt.Errorf("nominal leg height must be positive, got %v", g.NominalLegHeight)
	}
	if g.NominalLegHeight > g.LegLength {
		return fmt.Errorf("nominal leg height %v exceeds leg length %v", g.NominalLegHeight, g.LegLength)
	}
	if g.InitialLegHeight < g.NominalLegHeight {
		return fmt.Errorf("initial leg height %v below nominal %v", g.InitialLegHeight, g.NominalLegHeight)
	}
	return nil
}
