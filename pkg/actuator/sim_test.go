package actuator

import (
	"context"
	"errors"
	"testing"

	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/control"
	"github.com/zbotics/stride/pkg/gait"
)

func TestSimCommandLag(t *testing.T) {
	ctx := context.Background()
	sim := NewSim()

	got, err := sim.ReadPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh sim reported %d joints", len(got))
	}

	cmd := map[gait.JointName]float64{gait.LeftKnee: 12.5, gait.RightKnee: -12.5}
	if err := sim.WritePositions(ctx, cmd); err != nil {
		t.Fatal(err)
	}

	got, err = sim.ReadPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got[gait.LeftKnee] != 12.5 || got[gait.RightKnee] != -12.5 {
		t.Errorf("write not visible on next read: %v", got)
	}
}

func TestSimReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	sim := NewSim()

	if err := sim.WritePositions(ctx, map[gait.JointName]float64{gait.LeftKnee: 1}); err != nil {
		t.Fatal(err)
	}
	first, _ := sim.ReadPositions(ctx)
	first[gait.LeftKnee] = 999

	second, _ := sim.ReadPositions(ctx)
	if second[gait.LeftKnee] != 1 {
		t.Errorf("caller mutation leaked into sim state: %v", second)
	}
}

func TestSimOrientation(t *testing.T) {
	ctx := context.Background()
	sim := NewSim()

	if _, err := sim.ReadOrientation(ctx); !errors.Is(err, control.ErrOrientationUnavailable) {
		t.Fatalf("expected ErrOrientationUnavailable, got %v", err)
	}

	sim.SetOrientation(balance.Orientation{Pitch: 0.2, Roll: -0.1})
	o, err := sim.ReadOrientation(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if o.Pitch != 0.2 || o.Roll != -0.1 {
		t.Errorf("unexpected orientation: %+v", o)
	}

	sim.ClearOrientation()
	if _, err := sim.ReadOrientation(ctx); !errors.Is(err, control.ErrOrientationUnavailable) {
		t.Fatalf("expected ErrOrientationUnavailable after clear, got %v", err)
	}
}
