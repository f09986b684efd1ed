package actuator

import (
	"context"
	"sync"

	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/control"
	"github.com/zbotics/stride/pkg/gait"
)

// Sim is an in-memory collaborator for tests and dry runs. Commands echo
// back as feedback one tick later, modeling servos that track perfectly
// with a single period of latency. Orientation samples are injected by the
// caller; without one the corrector freezes, as on an IMU-less robot.
type Sim struct {
	mu sync.Mutex

	current  map[gait.JointName]float64
	pending  map[gait.JointName]float64
	attitude *balance.Orientation
}

var (
	_ control.FeedbackSource = (*Sim)(nil)
	_ control.CommandSink    = (*Sim)(nil)
)

// NewSim returns a simulator with all joints at zero.
func NewSim() *Sim {
	return &Sim{
		current: make(map[gait.JointName]float64),
	}
}

// SetOrientation injects the attitude returned by subsequent
// ReadOrientation calls.
func (s *Sim) SetOrientation(o balance.Orientation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attitude = &o
}

// ClearOrientation removes the injected attitude, so orientation reads
// report unavailable again.
func (s *Sim) ClearOrientation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attitude = nil
}

// ReadPositions returns the joint angles as of the previous tick's write.
func (s *Sim) ReadPositions(ctx context.Context) (map[gait.JointName]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.current = s.pending
		s.pending = nil
	}
	out := make(map[gait.JointName]float64, len(s.current))
	for name, deg := range s.current {
		out[name] = deg
	}
	return out, nil
}

// ReadOrientation returns the injected attitude, if any.
func (s *Sim) ReadOrientation(ctx context.Context) (balance.Orientation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attitude == nil {
		return balance.Orientation{}, control.ErrOrientationUnavailable
	}
	return *s.attitude, nil
}

// WritePositions stages the commanded angles to become visible on the next
// read.
func (s *Sim) WritePositions(ctx context.Context, positions map[gait.JointName]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[gait.JointName]float64, len(positions))
	for name, deg := range positions {
		staged[name] = deg
	}
	s.pending = staged
	return nil
}
