package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/zbotics/stride/pkg/actuator"
	"github.com/zbotics/stride/pkg/balance"
	"github.com/zbotics/stride/pkg/control"
	"github.com/zbotics/stride/pkg/gait"
	"github.com/zbotics/stride/pkg/telemetry"
)

type WalkCommand struct {
	Hz        int           `long:"hz" default:"50" description:"Control loop frequency"`
	Sim       bool          `long:"sim" description:"Use the in-memory simulator instead of a serial bus"`
	Port      string        `long:"port" description:"Serial port of the servo bus (overrides config file)"`
	Duration  time.Duration `long:"duration" default:"30s" description:"How long to walk before stopping"`
	Slow      bool          `long:"slow" description:"Use the conservative slow-walk tune"`
	Params    string        `long:"params" description:"JSON file overriding the gait parameters"`
	Telemetry string        `long:"telemetry" description:"Write JSON-lines telemetry to this file"`
	Debug     bool          `long:"debug" description:"Verbose logging"`
}

func (c *WalkCommand) Execute(args []string) error {
	logCfg := zap.NewProductionConfig()
	if c.Debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	source, sink, cleanup, err := c.collaborators(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var recorder *telemetry.Recorder
	if c.Telemetry != "" {
		f, err := os.Create(c.Telemetry)
		if err != nil {
			return fmt.Errorf("create telemetry file: %w", err)
		}
		defer f.Close()
		recorder = telemetry.NewRecorder(f)
		logger.Info("recording telemetry",
			zap.String("file", c.Telemetry),
			zap.String("session", recorder.Session()))
	}

	params := gait.DefaultParameters()
	if c.Slow {
		params = gait.SlowParameters()
	}
	if c.Params != "" {
		data, err := os.ReadFile(c.Params)
		if err != nil {
			return fmt.Errorf("read parameter file: %w", err)
		}
		if err := json.Unmarshal(data, &params); err != nil {
			return fmt.Errorf("parse parameter file: %w", err)
		}
	}

	ctrl, err := control.New(control.Config{
		Source:     source,
		Sink:       sink,
		Geometry:   gait.DefaultGeometry(),
		Parameters: params,
		Balance:    balance.DefaultConfig(),
		Hz:         c.Hz,
		Recorder:   recorder,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	ctrl.StartWalking()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, timeout := context.WithTimeout(ctx, c.Duration)
	defer timeout()

	if err := ctrl.Start(ctx); err != context.Canceled && err != context.DeadlineExceeded {
		return err
	}
	return nil
}

// collaborators picks the feedback source and command sink: the simulator,
// or a feetech servo bus from the flag/config file.
func (c *WalkCommand) collaborators(logger *zap.Logger) (control.FeedbackSource, control.CommandSink, func(), error) {
	if c.Sim {
		sim := actuator.NewSim()
		return sim, sim, func() {}, nil
	}

	port := c.Port
	cal := actuator.DefaultCalibration()
	if cfg, err := actuator.LoadConfig(""); err == nil {
		if port == "" {
			port = cfg.Port
		}
		cal = cfg.ResolveCalibration()
	}
	if port == "" {
		return nil, nil, nil, fmt.Errorf("no serial port: pass --port, set one in %s, or use --sim", actuator.DefaultConfigFile)
	}

	bus, err := actuator.NewBus(port, cal)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open servo bus: %w", err)
	}

	ctx := context.Background()
	if err := bus.Enable(ctx); err != nil {
		bus.Close()
		return nil, nil, nil, fmt.Errorf("enable torque: %w", err)
	}
	logger.Info("servo bus ready", zap.String("port", port))

	cleanup := func() {
		if err := bus.Disable(context.Background()); err != nil {
			logger.Warn("failed to disable torque", zap.Error(err))
		}
		bus.Close()
	}
	return bus, bus, cleanup, nil
}
