// Package config groups the sink settings required to construct a provider.
// Each sink backend only uses the keys relevant to it.
package config

import (
	"fmt"

	"github.com/drblury/traceprov/internal/runtime/errors"
)

// Config selects and configures the sink backend a provider writes to.
type Config struct {
	// SinkSystem selects the backing sink. Supported values: "etw" (the
	// platform tracing facility, a safe stub where it does not exist),
	// "memory", "jsonl", or "bus".
	SinkSystem string

	// OutputFile is the destination path for the jsonl sink. Empty means
	// standard output.
	OutputFile string

	// BusTopic is the topic the bus sink publishes records to.
	BusTopic string

	// MetricsEnabled turns on Prometheus counters for written, skipped,
	// and dropped events.
	MetricsEnabled bool
}

// Getter methods implementing the sink.Config interface.
func (c *Config) GetSinkSystem() string { return c.SinkSystem }
func (c *Config) GetOutputFile() string { return c.OutputFile }
func (c *Config) GetBusTopic() string   { return c.BusTopic }

// Default returns the configuration applications get when they supply none:
// the platform sink, degrading to the portable stub off-platform.
func Default() *Config {
	return &Config{SinkSystem: "etw"}
}

// ValidateConfig checks cross-field requirements before a sink is built.
func ValidateConfig(c *Config) error {
	if c == nil {
		return &errors.ConfigValidationError{Field: "Config", Reason: "config is nil"}
	}
	switch c.SinkSystem {
	case "":
		return &errors.ConfigValidationError{Field: "SinkSystem", Reason: "sink system is required"}
	case "bus":
		if c.BusTopic == "" {
			return &errors.ConfigValidationError{Field: "BusTopic", Reason: "bus sink requires a topic"}
		}
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("Config{SinkSystem:%s OutputFile:%s BusTopic:%s MetricsEnabled:%t}",
		c.SinkSystem, c.OutputFile, c.BusTopic, c.MetricsEnabled)
}
