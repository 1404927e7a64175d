// Package config loads the handful of tunables the embedding engine must
// supply to a debug session, adapted from the teacher's
// config.WorkflowConfig YAML-tagged struct pattern.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DebuggerConfig is the debugger core's own configuration surface: how
// much snapshot history to retain, where to persist workflow state
// checkpoints, and whether a session starts in an already-enabled
// breakpoint state.
type DebuggerConfig struct {
	HistoryCapacity int    `json:"historyCapacity" yaml:"historyCapacity"`
	StateDir        string `json:"stateDir" yaml:"stateDir"`
	StartEnabled    bool   `json:"startEnabled" yaml:"startEnabled"`
}

// Default returns the configuration a session starts with when the
// embedding engine supplies nothing.
func Default() DebuggerConfig {
	return DebuggerConfig{
		HistoryCapacity: 100,
		StateDir:        ".wfdbg",
		StartEnabled:    true,
	}
}

// Load reads and parses a DebuggerConfig from a YAML file at path, filling
// any field the file omits with its default value.
func Load(path string) (DebuggerConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return DebuggerConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DebuggerConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c DebuggerConfig) Validate() error {
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("config: historyCapacity must be positive, got %d", c.HistoryCapacity)
	}
	if c.StateDir == "" {
		return fmt.Errorf("config: stateDir must not be empty")
	}
	return nil
}
