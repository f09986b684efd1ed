// Package control runs the fixed-period loop that ties feedback, balance,
// gait, and actuation together: one tick reads feedback, updates the
// balance corrector, advances the gait machine, and pushes the mapped
// commands to the sink.
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/gait"
	"github.com/zbotics/stride/pkg/telemetry"
)

// ErrOrientationUnavailable is returned by feedback sources that have no
// orientation sample this tick. The corrector then freezes at its last
// output instead of updating.
var ErrOrientationUnavailable = errors.New("orientation unavailable")

// FeedbackSource supplies the two inputs the loop consumes. Reads may
// block on I/O; they are the only suspension points of a tick.
type FeedbackSource interface {
	// ReadPositions returns current joint angles in degrees. The result
	// may be partial or stale; missing joints are tolerated.
	ReadPositions(ctx context.Context) (map[gait.JointName]float64, error)

	// ReadOrientation returns the current body attitude, or
	// ErrOrientationUnavailable when the source has none.
	ReadOrientation(ctx context.Context) (balance.Orientation, error)
}

// CommandSink accepts one tick's target angles in degrees. Delivery and
// retry semantics belong to the implementation; the loop fires and forgets.
type CommandSink interface {
	WritePositions(ctx context.Context, positions map[gait.JointName]float64) error
}

// State is a snapshot of one completed tick, published for UIs.
type State struct {
	Tick         uint64
	Phase        gait.Phase
	StanceFoot   gait.Side
	CycleCounter int
	FootLift     float64
	Pitch        float64
	Roll         float64
	Correction   balance.Correction
	Feedback     map[gait.JointName]float64
	Commands     map[gait.JointName]float64
	Timestamp    time.Time
}

// Config assembles a controller.
type Config struct {
	Source FeedbackSource
	Sink   CommandSink

	Geometry   gait.Geometry
	Parameters gait.Parameters
	Balance    balance.Config

	// Hz is the control rate; defaults to 50.
	Hz int

	// StopTickBudget bounds how many extra ticks a cancelled loop may spend
	// walking the machine back to Ready. Defaults to three step cycles.
	StopTickBudget int

	// Recorder, if set, receives one telemetry sample per tick.
	Recorder *telemetry.Recorder

	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Controller owns the gait machine and balance corrector and ticks them at
// a fixed rate. The core types it drives are single-threaded; all ticking
// happens on the Start goroutine (or the caller's, via Step).
type Controller struct {
	source FeedbackSource
	sink   CommandSink

	machine   *gait.Machine
	corrector *balance.Corrector
	recorder  *telemetry.Recorder
	log       *zap.Logger

	hz         int
	stopBudget int

	tick         uint64
	lastFeedback map[gait.JointName]float64
	lastSample   time.Time

	// walkRequest carries start/stop requests across goroutines; the tick
	// goroutine folds it into the machine at the top of each Step.
	walkRequest atomic.Bool

	mu      sync.Mutex
	running bool

	stateCh chan State
}

// New validates the configuration and returns a controller with the gait
// machine in its ramp-down phase.
func New(cfg Config) (*Controller, error) {
	if cfg.Source == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("source and sink are required")
	}

	machine, err := gait.NewMachine(cfg.Geometry, cfg.Parameters)
	if err != nil {
		return nil, fmt.Errorf("create gait machine: %w", err)
	}
	corrector, err := balance.NewCorrector(cfg.Balance)
	if err != nil {
		return nil, fmt.Errorf("create balance corrector: %w", err)
	}

	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}
	if cfg.StopTickBudget <= 0 {
		cfg.StopTickBudget = 3 * cfg.Parameters.StepCycleLength
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Controller{
		source:     cfg.Source,
		sink:       cfg.Sink,
		machine:    machine,
		corrector:  corrector,
		recorder:   cfg.Recorder,
		log:        cfg.Logger,
		hz:         cfg.Hz,
		stopBudget: cfg.StopTickBudget,
		stateCh:    make(chan State, 1),
	}, nil
}

// Machine exposes the gait machine for parameter tuning and inspection.
// Callers must only touch it between ticks; the controller does no
// internal locking around it. Walk requests from other goroutines go
// through StartWalking and StopWalking instead.
func (c *Controller) Machine() *gait.Machine { return c.machine }

// StartWalking requests stepping. Safe to call from any goroutine; the
// request reaches the machine at the top of the next tick.
func (c *Controller) StartWalking() { c.walkRequest.Store(true) }

// StopWalking requests a return to the standing stance, applied at the
// next tick. The machine still finishes the step in flight.
func (c *Controller) StopWalking() { c.walkRequest.Store(false) }

// Hz returns the control rate.
func (c *Controller) Hz() int { return c.hz }

// States returns a channel carrying one snapshot per tick. Slow consumers
// see the newest state; stale snapshots are dropped.
func (c *Controller) States() <-chan State { return c.stateCh }

// Start runs the loop until ctx is cancelled. On cancellation it finishes
// the tick in flight, asks the machine to stop walking, and keeps ticking
// until the machine reaches Ready or the stop budget runs out, so a leg is
// never abandoned mid-swing. Returns ctx.Err after the wind-down.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.log.Info("control loop starting",
		zap.Int("hz", c.hz),
		zap.Int("step_cycle_length", c.machine.Parameters().StepCycleLength))

	period := time.Second / time.Duration(c.hz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.windDown(ticker)
			c.log.Info("control loop stopped", zap.Uint64("ticks", c.tick))
			return ctx.Err()
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}

// windDown drives the machine back to a standing stance on the same
// cadence. It runs after ctx is cancelled, so I/O uses a fresh context.
func (c *Controller) windDown(ticker *time.Ticker) {
	c.walkRequest.Store(false)
	c.machine.StopWalking()
	if c.machine.Phase() == gait.PhaseReady {
		return
	}

	ctx := context.Background()
	c.log.Info("walking machine back to ready stance",
		zap.Stringer("phase", c.machine.Phase()),
		zap.Int("tick_budget", c.stopBudget))

	for i := 0; i < c.stopBudget; i++ {
		<-ticker.C
		c.Step(ctx)
		if c.machine.Phase() == gait.PhaseReady {
			return
		}
	}
	c.log.Warn("stop budget exhausted before reaching ready stance",
		zap.Stringer("phase", c.machine.Phase()))
}

// Step executes exactly one tick: feedback, balance, gait, commands. It is
// total; transient I/O failures degrade to last-known state and are logged,
// never returned. Exposed so tests and alternative drivers can pace the
// loop themselves.
func (c *Controller) Step(ctx context.Context) State {
	now := time.Now()
	c.tick++

	if want := c.walkRequest.Load(); want != c.machine.WalkRequested() {
		if want {
			c.machine.StartWalking()
		} else {
			c.machine.StopWalking()
		}
	}

	// Feedback for this tick is read before anything computes. A failed
	// read keeps the previous values; absence of a joint must not stop the
	// gait.
	feedback, err := c.source.ReadPositions(ctx)
	if err != nil {
		c.log.Warn("feedback read failed, keeping last known positions", zap.Error(err))
	} else {
		c.lastFeedback = feedback
	}

	correction := c.updateBalance(ctx, now)
	angles := c.machine.Update(correction.Pitch, correction.Roll)
	commands := gait.Commands(angles)

	if err := c.sink.WritePositions(ctx, commands); err != nil {
		c.log.Warn("command write failed", zap.Error(err))
	}

	if c.recorder != nil {
		c.recorder.Record(telemetry.Sample{
			Tick:            c.tick,
			Phase:           c.machine.Phase().String(),
			StanceFoot:      int(c.machine.StanceFoot()),
			CycleCounter:    c.machine.CycleCounter(),
			FootLift:        c.machine.FootLift(),
			Pitch:           c.corrector.Pitch(),
			Roll:            c.corrector.Roll(),
			PitchCorrection: correction.Pitch,
			RollCorrection:  correction.Roll,
		})
	}

	state := State{
		Tick:         c.tick,
		Phase:        c.machine.Phase(),
		StanceFoot:   c.machine.StanceFoot(),
		CycleCounter: c.machine.CycleCounter(),
		FootLift:     c.machine.FootLift(),
		Pitch:        c.corrector.Pitch(),
		Roll:         c.corrector.Roll(),
		Correction:   correction,
		Feedback:     c.lastFeedback,
		Commands:     commands,
		Timestamp:    now,
	}
	c.publish(state)
	return state
}

func (c *Controller) updateBalance(ctx context.Context, now time.Time) balance.Correction {
	sample, err := c.source.ReadOrientation(ctx)
	if err != nil {
		// No sample this tick: freeze. The last correction keeps being
		// applied rather than halting or zeroing out balance.
		if !errors.Is(err, ErrOrientationUnavailable) {
			c.log.Warn("orientation read failed, freezing balance state", zap.Error(err))
		}
		return c.corrector.Last()
	}

	dt := 1.0 / float64(c.hz)
	if !c.lastSample.IsZero() {
		dt = now.Sub(c.lastSample).Seconds()
	}
	c.lastSample = now
	return c.corrector.Update(sample, dt)
}

func (c *Controller) publish(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop the stale snapshot so the consumer always sees the newest.
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}
