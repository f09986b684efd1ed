package gait

import (
	"fmt"
	"math"
)

// Phase is the discriminant of the gait state machine.
type Phase int

const (
	// PhaseRampDown lowers the body from the initial to the nominal leg
	// height, one fixed decrement per tick, with both feet together.
	PhaseRampDown Phase = iota

	// PhaseReady holds the nominal standing stance until walking is enabled.
	PhaseReady

	// PhaseDoubleSupport is the walking sub-phase with both feet on the
	// ground, shifting weight onto the stance foot.
	PhaseDoubleSupport

	// PhaseSingleSupport is the walking sub-phase with the swing foot
	// airborne, traveling to its next placement.
	PhaseSingleSupport
)

func (p Phase) String() string {
	switch p {
	case PhaseRampDown:
		return "ramp_down"
	case PhaseReady:
		return "ready"
	case PhaseDoubleSupport:
		return "double_support"
	case PhaseSingleSupport:
		return "single_support"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Walking reports whether the phase is one of the two stepping sub-phases.
func (p Phase) Walking() bool {
	return p == PhaseDoubleSupport || p == PhaseSingleSupport
}

const (
	// rampStep is how far the body drops per RampDown tick, in mm.
	rampStep = 1.0

	// rampEpsilon is how close to nominal the ramp must get before the
	// machine settles into Ready.
	rampEpsilon = 0.1

	// pitchAnkleShare is the fraction of the pitch correction fed to both
	// ankles on top of the hip-pitch adjustment.
	pitchAnkleShare = 0.7

	// rollHipShare is the fraction of the roll correction applied to the
	// two hip-roll targets with opposite sign.
	rollHipShare = 0.5
)

// FootTarget is the (x, y, h) position requested from the solver for one
// foot on the last tick, in mm.
type FootTarget struct {
	X float64
	Y float64
	H float64
}

// Machine is the gait state machine. It owns all mutable gait state and
// produces one set of joint angles per tick. It is not safe for concurrent
// use; the control loop ticks it from a single goroutine and callers that
// need cross-goroutine access must serialize externally.
type Machine struct {
	geom   Geometry
	params Parameters
	// pending is a parameter change staged by SetParameters, applied at the
	// next step boundary so a step in flight keeps its tune.
	pending *Parameters
	solver  Solver

	phase       Phase
	walkRequest bool
	rampHeight  float64

	stanceFoot         Side
	cycleCounter       int
	forwardOffset      [2]float64
	accumulatedForward float64
	prevStanceOffset   float64
	prevSwingOffset    float64
	footLift           float64
	lateralOffset      float64

	legs    [2]LegAngles
	targets [2]FootTarget
}

// NewMachine validates the configuration and returns a machine in
// PhaseRampDown. Construction is the only failure channel; Update is total.
func NewMachine(geom Geometry, params Parameters) (*Machine, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	m := &Machine{
		geom:   geom,
		params: params,
		solver: NewSolver(geom),
	}
	m.Reset()
	return m, nil
}

// Reset returns the machine to PhaseRampDown at the initial leg height,
// clearing all stride state. Walking stays requested if it was.
func (m *Machine) Reset() {
	m.phase = PhaseRampDown
	m.rampHeight = m.geom.InitialLegHeight
	m.stanceFoot = Left
	m.resetStride()
}

func (m *Machine) resetStride() {
	m.cycleCounter = 0
	m.forwardOffset = [2]float64{}
	m.accumulatedForward = 0
	m.prevStanceOffset = 0
	m.prevSwingOffset = 0
	m.footLift = 0
	m.lateralOffset = 0
}

// Phase returns the current gait phase.
func (m *Machine) Phase() Phase { return m.phase }

// StanceFoot returns which foot currently bears weight.
func (m *Machine) StanceFoot() Side { return m.stanceFoot }

// CycleCounter returns the tick position within the current step cycle.
func (m *Machine) CycleCounter() int { return m.cycleCounter }

// FootLift returns the current swing-foot lift in mm.
func (m *Machine) FootLift() float64 { return m.footLift }

// LateralOffset returns the current side-to-side shift in mm.
func (m *Machine) LateralOffset() float64 { return m.lateralOffset }

// AccumulatedForwardOffset returns the forward travel absorbed so far in
// the current step cycle, in mm.
func (m *Machine) AccumulatedForwardOffset() float64 { return m.accumulatedForward }

// Parameters returns the active parameter set.
func (m *Machine) Parameters() Parameters { return m.params }

// FootTargets returns the solver inputs of the last tick, indexed by Side.
func (m *Machine) FootTargets() [2]FootTarget { return m.targets }

// SetStanceFoot selects which foot starts the first step. It only applies
// before walking has begun.
func (m *Machine) SetStanceFoot(s Side) error {
	if m.phase.Walking() {
		return fmt.Errorf("cannot change stance foot while walking")
	}
	m.stanceFoot = s
	return nil
}

// StartWalking requests the transition from Ready into the step cycle.
func (m *Machine) StartWalking() { m.walkRequest = true }

// StopWalking requests a return to Ready. The machine finishes the step in
// flight first so it never abandons a leg mid-swing.
func (m *Machine) StopWalking() { m.walkRequest = false }

// WalkRequested reports whether the caller has asked for walking.
func (m *Machine) WalkRequested() bool { return m.walkRequest }

// SetParameters stages a new tune. It takes effect immediately while
// standing, otherwise at the next foot switch.
func (m *Machine) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if m.phase.Walking() {
		staged := p
		m.pending = &staged
		return nil
	}
	m.params = p
	return nil
}

func (m *Machine) applyPending() {
	if m.pending != nil {
		m.params = *m.pending
		m.pending = nil
	}
}

// Update advances the gait by one tick and returns the joint angles for
// both legs. pitchCorrection and rollCorrection are the clamped outputs of
// the balance corrector; pass zeros to walk open-loop. Update is total: it
// always produces angles.
func (m *Machine) Update(pitchCorrection, rollCorrection float64) JointAngles {
	switch m.phase {
	case PhaseRampDown:
		m.tickRampDown()
	case PhaseReady:
		m.tickReady()
	case PhaseDoubleSupport, PhaseSingleSupport:
		m.tickWalking()
	}
	return m.assemble(pitchCorrection, rollCorrection)
}

func (m *Machine) tickRampDown() {
	if m.rampHeight > m.geom.NominalLegHeight+rampEpsilon {
		m.rampHeight -= rampStep
	}
	if m.rampHeight <= m.geom.NominalLegHeight+rampEpsilon {
		m.rampHeight = m.geom.NominalLegHeight
		m.phase = PhaseReady
	}

	// Feet together, no lateral stance yet.
	m.solveFoot(Left, -m.geom.HipForwardOffset, 0, m.rampHeight)
	m.solveFoot(Right, -m.geom.HipForwardOffset, 0, m.rampHeight)
}

func (m *Machine) tickReady() {
	m.applyPending()
	m.solveFoot(Left, -m.geom.HipForwardOffset, -m.params.BaseStanceWidth, m.geom.NominalLegHeight)
	m.solveFoot(Right, -m.geom.HipForwardOffset, m.params.BaseStanceWidth, m.geom.NominalLegHeight)

	if m.walkRequest {
		m.resetStride()
		// The counter starts at 1, matching the reset value on every later
		// foot switch, so the first and subsequent cycles apply the same
		// number of stepping ticks.
		m.cycleCounter = 1
		m.phase = PhaseDoubleSupport
	}
}

func (m *Machine) tickWalking() {
	p := m.params
	cycle := float64(p.StepCycleLength)
	counter := float64(m.cycleCounter)

	// The lateral offset is recomputed from scratch each tick, never
	// integrated, so it cannot drift.
	sinValue := math.Sin(math.Pi * counter / cycle)
	shift := p.LateralFootShift * sinValue
	if m.stanceFoot == Left {
		m.lateralOffset = shift
	} else {
		m.lateralOffset = -shift
	}

	// Stance foot decays toward zero in the first half of the cycle, then
	// retreats to set up the next step in the second half.
	halfCycle := cycle / 2
	if counter < halfCycle {
		fraction := counter / cycle
		m.forwardOffset[m.stanceFoot] = m.prevStanceOffset * (1 - 2*fraction)
	} else {
		fraction := 2*counter/cycle - 1
		m.forwardOffset[m.stanceFoot] = -(p.StepLength - m.accumulatedForward) * fraction
	}

	if m.phase == PhaseDoubleSupport {
		if counter < p.DoubleSupportFraction*cycle {
			// Both feet grounded: the swing foot trails the stance foot by
			// the distance the stance foot has given up so far.
			m.forwardOffset[m.stanceFoot.Other()] = m.prevSwingOffset -
				(m.prevStanceOffset - m.forwardOffset[m.stanceFoot])
		} else {
			m.prevSwingOffset = m.forwardOffset[m.stanceFoot.Other()]
			m.phase = PhaseSingleSupport
		}
	}

	if m.phase == PhaseSingleSupport {
		startSwing := int(p.DoubleSupportFraction * cycle)
		denom := (1 - p.DoubleSupportFraction) * cycle
		if denom < 1e-8 {
			// A double-support fraction at the cycle boundary would
			// otherwise divide by zero here.
			denom = 1
		}
		frac := (1 - math.Cos(math.Pi*(counter-float64(startSwing))/denom)) / 2
		m.forwardOffset[m.stanceFoot.Other()] = m.prevSwingOffset +
			frac*(p.StepLength-m.accumulatedForward-m.prevSwingOffset)
	}

	// Swing-foot lift follows a sine over the single-support remainder of
	// the cycle. The stance foot is never lifted.
	liftStart := int(p.DoubleSupportFraction * cycle)
	if m.cycleCounter > liftStart {
		m.footLift = p.MaxFootLift * math.Sin(
			math.Pi*float64(m.cycleCounter-liftStart)/float64(p.StepCycleLength-liftStart))
	} else {
		m.footLift = 0
	}

	stanceLift, swingLift := 0.0, m.footLift
	leftLift, rightLift := stanceLift, swingLift
	if m.stanceFoot == Right {
		leftLift, rightLift = swingLift, stanceLift
	}

	m.solveFoot(Left,
		m.forwardOffset[Left]-m.geom.HipForwardOffset,
		-m.lateralOffset-p.BaseStanceWidth,
		m.geom.NominalLegHeight-leftLift)
	m.solveFoot(Right,
		m.forwardOffset[Right]-m.geom.HipForwardOffset,
		m.lateralOffset+p.BaseStanceWidth,
		m.geom.NominalLegHeight-rightLift)

	if m.cycleCounter >= p.StepCycleLength {
		m.switchFeet()
	} else {
		m.cycleCounter++
	}
}

// switchFeet completes a step cycle: the swing foot becomes the stance
// foot and the current offsets become the baselines of the next cycle. The
// counter restarts at 1, not 0, so the boundary tick is not applied twice.
func (m *Machine) switchFeet() {
	m.stanceFoot = m.stanceFoot.Other()
	m.cycleCounter = 1
	m.accumulatedForward = 0
	m.prevStanceOffset = m.forwardOffset[m.stanceFoot]
	m.prevSwingOffset = m.forwardOffset[m.stanceFoot.Other()]
	m.footLift = 0
	m.phase = PhaseDoubleSupport
	m.applyPending()

	if !m.walkRequest {
		m.phase = PhaseReady
		m.resetStride()
	}
}

func (m *Machine) solveFoot(side Side, x, y, h float64) {
	m.targets[side] = FootTarget{X: x, Y: y, H: h}
	m.legs[side] = m.solver.Solve(x, y, h)
}

// assemble layers the configured offsets and the balance corrections onto
// the raw solver output.
func (m *Machine) assemble(pitchCorrection, rollCorrection float64) JointAngles {
	effectiveHipPitch := m.params.HipPitchOffset - pitchCorrection

	var out JointAngles
	for side := Left; side <= Right; side++ {
		la := m.legs[side]
		la.HipPitch += effectiveHipPitch
		la.HipRoll += m.params.RollOffset
		out.Legs[side] = la
	}

	// Roll correction loads the stance ankle and unloads the swing ankle;
	// part of the pitch correction goes to both ankles on top of the hip
	// adjustment above.
	stance, swing := m.stanceFoot, m.stanceFoot.Other()
	ankleComp := pitchCorrection * pitchAnkleShare
	out.Legs[stance].AnklePitch += rollCorrection + ankleComp
	out.Legs[swing].AnklePitch += -rollCorrection + ankleComp

	out.Legs[Left].HipRoll += rollCorrection * rollHipShare
	out.Legs[Right].HipRoll -= rollCorrection * rollHipShare

	return out
}
