package actuator

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/control"
	"github.com/zbotics/stride/pkg/gait"
)

// Bus drives the leg servos over a feetech serial bus. It implements both
// control.FeedbackSource and control.CommandSink. The bus carries no IMU,
// so ReadOrientation always reports unavailable and the balance corrector
// stays frozen; pair it with an external orientation source if the robot
// has one.
type Bus struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

var (
	_ control.FeedbackSource = (*Bus)(nil)
	_ control.CommandSink    = (*Bus)(nil)
)

// NewBus opens the serial port and prepares the servo group from the
// calibration's IDs.
func NewBus(port string, cal Calibration) (*Bus, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	group := feetech.NewServoGroupByIDs(bus, cal.ServoIDs()...)

	return &Bus{
		bus:         bus,
		group:       group,
		calibration: cal,
	}, nil
}

// Close closes the serial connection.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// Enable enables torque on all leg servos.
func (b *Bus) Enable(ctx context.Context) error {
	return b.group.EnableAll(ctx)
}

// Disable disables torque on all leg servos.
func (b *Bus) Disable(ctx context.Context) error {
	return b.group.DisableAll(ctx)
}

// ReadPositions reads current joint angles in degrees using sync read.
// Servos missing from the calibration are skipped.
func (b *Bus) ReadPositions(ctx context.Context) (map[gait.JointName]float64, error) {
	rawPositions, err := b.group.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	positions := make(map[gait.JointName]float64, len(rawPositions))
	for id, raw := range rawPositions {
		name, cal, ok := b.calibration.ByID(id)
		if !ok {
			continue
		}
		positions[name] = cal.Degrees(raw)
	}
	return positions, nil
}

// ReadOrientation reports that the servo bus has no orientation data.
func (b *Bus) ReadOrientation(ctx context.Context) (balance.Orientation, error) {
	return balance.Orientation{}, control.ErrOrientationUnavailable
}

// WritePositions writes target angles in degrees using sync write. Joints
// without calibration are dropped.
func (b *Bus) WritePositions(ctx context.Context, positions map[gait.JointName]float64) error {
	rawPositions := make(feetech.PositionMap, len(positions))
	for name, deg := range positions {
		cal, ok := b.calibration[name]
		if !ok {
			continue
		}
		rawPositions[cal.ID] = cal.Raw(deg)
	}

	if err := b.group.SetPositions(ctx, rawPositions); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}
