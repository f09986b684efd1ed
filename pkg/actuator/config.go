package actuator

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is where the robot setup lives when no path is given.
const DefaultConfigFile = "stride.json"

// Config is the on-disk robot setup: the serial port and the per-joint
// servo calibration. It is the single surface for everything the bus
// needs to come up; a file without calibration runs on the stock layout.
type Config struct {
	Port        string      `json:"port"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// LoadConfig reads the setup from path, or from DefaultConfigFile when
// path is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveCalibration returns the configured servo calibration, falling
// back to the stock layout when the file carries none.
func (c *Config) ResolveCalibration() Calibration {
	if len(c.Calibration) > 0 {
		return c.Calibration
	}
	return DefaultCalibration()
}

// Save writes the setup to path, or to DefaultConfigFile when path is
// empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
