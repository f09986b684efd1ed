package balance

import (
	"fmt"
	"math"
)

// historySize is the length of the velocity window used for the trend
// estimate.
const historySize = 5

// Correction is the corrector's output, in radians, already clamped to the
// configured maxima. Pitch is subtracted from the gait machine's hip-pitch
// offset; Roll is distributed across the ankles and hips by the machine.
type Correction struct {
	Pitch float64
	Roll  float64
}

// Config holds the corrector gains and bounds. Angles are radians.
type Config struct {
	// Alpha is the low-pass smoothing factor in (0, 1]; higher tracks the
	// raw signal faster.
	Alpha float64 `json:"alpha"`

	// Proportional gains on the filtered angles.
	PitchGain float64 `json:"pitch_gain"`
	RollGain  float64 `json:"roll_gain"`

	// Gains on the angular velocities, for predictive correction.
	PitchVelocityGain float64 `json:"pitch_velocity_gain"`
	RollVelocityGain  float64 `json:"roll_velocity_gain"`

	// Weights on the velocity-trend term.
	PitchAccelWeight float64 `json:"pitch_accel_weight"`
	RollAccelWeight  float64 `json:"roll_accel_weight"`

	// Thresholds past which the correction is scaled up 1.5x, because the
	// robot is visibly tipping.
	PitchCorrectionStart float64 `json:"pitch_correction_start"`
	RollCorrectionStart  float64 `json:"roll_correction_start"`

	// Output bounds, applied last.
	MaxPitchCorrection float64 `json:"max_pitch_correction"`
	MaxRollCorrection  float64 `json:"max_roll_correction"`
}

// DefaultConfig returns the gains tuned on the real robot.
func DefaultConfig() Config {
	return Config{
		Alpha:                0.5,
		PitchGain:            2.0,
		RollGain:             1.0,
		PitchVelocityGain:    0.8,
		RollVelocityGain:     0.3,
		PitchAccelWeight:     0.3,
		RollAccelWeight:      0.2,
		PitchCorrectionStart: radians(5),
		RollCorrectionStart:  radians(3),
		MaxPitchCorrection:   radians(25),
		MaxRollCorrection:    radians(20),
	}
}

// Validate rejects configurations the corrector cannot run with.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %v", c.Alpha)
	}
	if c.MaxPitchCorrection < 0 || c.MaxRollCorrection < 0 {
		return fmt.Errorf("correction bounds must not be negative")
	}
	return nil
}

// Corrector keeps the filtered orientation state and turns it into
// corrections. Not safe for concurrent use.
type Corrector struct {
	cfg Config

	filteredPitch float64
	filteredRoll  float64
	pitchVelocity float64
	rollVelocity  float64

	pitchHistory [historySize]float64
	rollHistory  [historySize]float64

	last Correction
}

// NewCorrector validates cfg and returns a corrector at rest.
func NewCorrector(cfg Config) (*Corrector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid balance config: %w", err)
	}
	return &Corrector{cfg: cfg}, nil
}

// Update folds one orientation sample into the filtered state and returns
// the new correction. dt is the time since the previous sample in seconds;
// a non-positive dt keeps the previous velocities.
//
// When no sample is available for a tick, do not call Update: use Last,
// which returns the frozen previous output. Balance must degrade
// gracefully, never halt the loop.
func (c *Corrector) Update(sample Orientation, dt float64) Correction {
	prevPitch, prevRoll := c.filteredPitch, c.filteredRoll
	c.filteredPitch = c.cfg.Alpha*sample.Pitch + (1-c.cfg.Alpha)*c.filteredPitch
	c.filteredRoll = c.cfg.Alpha*sample.Roll + (1-c.cfg.Alpha)*c.filteredRoll

	if dt > 0 {
		c.pitchVelocity = (c.filteredPitch - prevPitch) / dt
		c.rollVelocity = (c.filteredRoll - prevRoll) / dt
	}

	pushHistory(&c.pitchHistory, c.pitchVelocity)
	pushHistory(&c.rollHistory, c.rollVelocity)

	c.last = c.compute()
	return c.last
}

// Last returns the most recent correction without touching any state. It
// is the freeze path for ticks with no orientation sample.
func (c *Corrector) Last() Correction { return c.last }

// Pitch returns the filtered pitch, for telemetry and display.
func (c *Corrector) Pitch() float64 { return c.filteredPitch }

// Roll returns the filtered roll, for telemetry and display.
func (c *Corrector) Roll() float64 { return c.filteredRoll }

func (c *Corrector) compute() Correction {
	// Trend of the velocity window. This is a sum of consecutive
	// differences, not a rigorously filtered second derivative; the gains
	// were tuned against exactly this signal, so it stays as-is.
	pitchAccel := trend(c.pitchHistory)
	rollAccel := trend(c.rollHistory)

	predictivePitch := c.pitchVelocity*c.cfg.PitchVelocityGain + pitchAccel*c.cfg.PitchAccelWeight
	predictiveRoll := c.rollVelocity*c.cfg.RollVelocityGain + rollAccel*c.cfg.RollAccelWeight

	pitch := c.cfg.PitchGain*c.filteredPitch + predictivePitch
	roll := c.cfg.RollGain*c.filteredRoll + predictiveRoll

	if math.Abs(c.filteredPitch) > c.cfg.PitchCorrectionStart {
		pitch *= 1.5
	}
	if math.Abs(c.filteredRoll) > c.cfg.RollCorrectionStart {
		roll *= 1.5
	}

	// Forward falls are corrected harder than backward ones; the robot can
	// recover from a backward lean but not from tipping onto its face.
	if c.filteredPitch > 0 || (c.filteredPitch > -0.1 && c.pitchVelocity > 0) {
		pitch *= 2.0
	}

	return Correction{
		Pitch: clamp(pitch, -c.cfg.MaxPitchCorrection, c.cfg.MaxPitchCorrection),
		Roll:  clamp(roll, -c.cfg.MaxRollCorrection, c.cfg.MaxRollCorrection),
	}
}

func pushHistory(h *[historySize]float64, v float64) {
	copy(h[:], h[1:])
	h[historySize-1] = v
}

func trend(h [historySize]float64) float64 {
	var sum float64
	for i := 1; i < historySize; i++ {
		sum += h[i] - h[i-1]
	}
	return sum
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

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
