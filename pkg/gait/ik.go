package gait

import "math"

// epsilon below which a length is treated as zero to keep the trig total.
const ikEpsilon = 1e-8

// Solver converts a desired foot position into leg joint angles. It is a
// pure function of its inputs and the Geometry constants; it never fails.
//
// The leg is modeled as a single effective link from hip to foot. Reach
// requests beyond the physical leg length are silently truncated rather
// than rejected, so the control loop stays branch-free.
type Solver struct {
	geom Geometry
}

// NewSolver returns a solver for the given leg geometry.
func NewSolver(geom Geometry) Solver {
	return Solver{geom: geom}
}

// Solve returns the joint angles that place the foot at forward offset x,
// lateral offset y, and vertical hip-to-foot distance h, all in mm.
// Angles are raw: the gait machine layers stance offsets and balance
// corrections on top.
func (s Solver) Solve(x, y, h float64) LegAngles {
	// Effective link length, clamped to the physical leg.
	k := math.Sqrt(x*x + y*y + h*h)
	if k > s.geom.LegLength {
		k = s.geom.LegLength
	}

	// Forward lean of the virtual leg. The ratio is clamped so that a
	// truncated k can never push asin out of its domain.
	var alpha float64
	if math.Abs(k) >= ikEpsilon {
		alpha = math.Asin(clamp(x/k, -1, 1))
	}

	// Knee bend of the virtual leg.
	gamma := math.Acos(clamp(k/s.geom.LegLength, -1, 1))

	var hipRoll float64
	if math.Abs(h) >= ikEpsilon {
		hipRoll = math.Atan2(y, h)
	}

	return LegAngles{
		HipPitch:   gamma + alpha,
		HipRoll:    hipRoll,
		Knee:       s.geom.KneeGain*gamma + s.geom.KneeBias,
		AnklePitch: gamma - alpha + s.geom.AnklePitchBias,
	}
}

// Foot recomputes the foot position that produced the given raw angles.
// It is the forward-kinematics inverse of Solve, used to verify solver
// round trips.
func (s Solver) Foot(a LegAngles) (x, y, h float64) {
	gamma := (a.HipPitch + a.AnklePitch - s.geom.AnklePitchBias) / 2
	alpha := (a.HipPitch - a.AnklePitch + s.geom.AnklePitchBias) / 2

	k := s.geom.LegLength * math.Cos(gamma)
	x = k * math.Sin(alpha)

	// Remaining reach in the frontal plane, split by the hip-roll angle.
	r := math.Sqrt(math.Max(k*k-x*x, 0))
	y = r * math.Sin(a.HipRoll)
	h = r * math.Cos(a.HipRoll)
	return x, y, h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
