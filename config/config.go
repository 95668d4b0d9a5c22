// Package config handles ls8.toml machine configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

// Config represents an ls8.toml machine configuration.
type Config struct {
	Machine Machine `toml:"machine"`
	Trace   Trace   `toml:"trace"`
}

// Machine configures the emulated processor.
type Machine struct {
	StackOrigin uint8 `toml:"stack_origin"`
	TickLimit   int   `toml:"tick_limit"`
}

// Trace configures diagnostic output.
type Trace struct {
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Machine: Machine{
			StackOrigin: cpu.STACK_ORIGIN,
			TickLimit:   emulator.TICK_LIMIT_NONE,
		},
	}
}

// Decode parses TOML text over the defaults.
func Decode(text string) (*Config, error) {
	c := Default()
	if _, err := toml.Decode(text, c); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if c.Machine.TickLimit < 0 {
		return nil, fmt.Errorf("tick_limit %d is negative", c.Machine.TickLimit)
	}

	return c, nil
}

// Load parses an ls8.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Apply configures an emulator.
func (c *Config) Apply(emu *emulator.Emulator) {
	emu.Cpu.StackOrigin = c.Machine.StackOrigin
	emu.TickLimit = c.Machine.TickLimit
	emu.Verbose = c.Trace.Verbose
}
