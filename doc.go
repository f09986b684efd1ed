// Package stride is a closed-loop walking controller for the Z-Bot
// bipedal robot.
//
// At a fixed control rate it turns a walking request and live sensor
// feedback into one target angle per leg joint: an inverse-kinematics
// solver places each foot, a multi-phase gait state machine drives the
// feet through the step cycle, and a balance corrector folds inertial
// feedback into the hip and ankle targets.
//
// # Usage
//
// Run the controller against the in-memory simulator:
//
//	stride walk --sim --duration 30s
//
// Or against the real servo bus, with a live view:
//
//	stride monitor --port /dev/ttyUSB0
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/stride: CLI with walk and monitor commands
//   - pkg/gait: inverse kinematics, gait state machine, command mapping
//   - pkg/balance: orientation filtering and balance correction
//   - pkg/control: the fixed-period control loop
//   - pkg/actuator: servo-bus and simulator collaborators
//   - pkg/telemetry: JSON-lines gait telemetry
package stride
