package balance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCorrector(t *testing.T) *Corrector {
	t.Helper()
	c, err := NewCorrector(DefaultConfig())
	require.NoError(t, err)
	return c
}

// settle feeds the same sample until the filter converges, so velocity and
// trend terms die out.
func settle(c *Corrector, sample Orientation) Correction {
	var corr Correction
	for i := 0; i < 200; i++ {
		corr = c.Update(sample, 0.02)
	}
	return corr
}

func TestCorrectionAlwaysClamped(t *testing.T) {
	cfg := DefaultConfig()
	c, err := NewCorrector(cfg)
	require.NoError(t, err)

	// Wild swings, sign flips, and tiny dt (which blows up the velocity
	// estimate) must never escape the bounds.
	samples := []Orientation{
		{Pitch: 1.5, Roll: -1.2},
		{Pitch: -1.5, Roll: 1.2},
		{Pitch: 0.7, Roll: 0.7},
		{Pitch: -0.01, Roll: 0.0},
		{Pitch: 3.0, Roll: -3.0},
	}
	for i := 0; i < 100; i++ {
		corr := c.Update(samples[i%len(samples)], 0.001)
		require.LessOrEqual(t, math.Abs(corr.Pitch), cfg.MaxPitchCorrection, "tick %d", i)
		require.LessOrEqual(t, math.Abs(corr.Roll), cfg.MaxRollCorrection, "tick %d", i)
	}
}

func TestFreezeWithoutSample(t *testing.T) {
	c := newTestCorrector(t)

	c.Update(Orientation{Pitch: 0.1, Roll: -0.05}, 0.02)
	c.Update(Orientation{Pitch: 0.12, Roll: -0.04}, 0.02)
	frozen := c.Last()

	// Five tickless reads in a row: bit-identical output, untouched state.
	for i := 0; i < 5; i++ {
		assert.Equal(t, frozen, c.Last(), "read %d", i)
	}
	assert.Equal(t, frozen, c.Last())
}

func TestForwardPitchCorrectedHarder(t *testing.T) {
	// Steady small lean below the early-correction threshold, so only the
	// forward-fall doubling separates the two directions.
	forward := settle(newTestCorrector(t), Orientation{Pitch: 0.06})
	backward := settle(newTestCorrector(t), Orientation{Pitch: -0.06})

	require.Greater(t, forward.Pitch, 0.0)
	require.Less(t, backward.Pitch, 0.0)
	assert.Greater(t, math.Abs(forward.Pitch), 1.5*math.Abs(backward.Pitch))
}

func TestLargeLeanSaturates(t *testing.T) {
	cfg := DefaultConfig()
	corr := settle(newTestCorrector(t), Orientation{Pitch: 0.5, Roll: 0.5})

	assert.InDelta(t, cfg.MaxPitchCorrection, corr.Pitch, 1e-9)
	assert.InDelta(t, cfg.MaxRollCorrection, corr.Roll, 1e-9)
}

func TestLowPassTracksSample(t *testing.T) {
	c := newTestCorrector(t)

	c.Update(Orientation{Pitch: 0.2}, 0.02)
	assert.InDelta(t, 0.1, c.Pitch(), 1e-9, "alpha 0.5 halves the first step")

	settle(c, Orientation{Pitch: 0.2})
	assert.InDelta(t, 0.2, c.Pitch(), 1e-6, "filter converges to the input")
}

func TestNonPositiveDtKeepsVelocity(t *testing.T) {
	c := newTestCorrector(t)

	c.Update(Orientation{Pitch: 0.1}, 0.02)
	after := c.Update(Orientation{Pitch: 0.1}, 0)

	// dt=0 must not divide; the previous velocity estimate is reused.
	require.False(t, math.IsNaN(after.Pitch))
	require.False(t, math.IsInf(after.Pitch, 0))
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero alpha", func(c *Config) { c.Alpha = 0 }},
		{"alpha above one", func(c *Config) { c.Alpha = 1.5 }},
		{"negative pitch bound", func(c *Config) { c.MaxPitchCorrection = -0.1 }},
		{"negative roll bound", func(c *Config) { c.MaxRollCorrection = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mod(&cfg)
			_, err := NewCorrector(cfg)
			assert.Error(t, err)
		})
	}
}
