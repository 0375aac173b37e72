package config

import (
	"errors"
	"fmt"
	"text/template"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBind(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBind() error {
	if c.Bind.FastPathTolerance < 0 {
		return errors.New("bind.fast_path_tolerance must be >= 0")
	}
	if c.Bind.Workers < 0 {
		return errors.New("bind.workers must be >= 0 (0 selects the CPU count)")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.SilenceDuration <= 0 {
		return errors.New("split.silence_duration must be positive")
	}
	if c.Split.SilenceThresholdDB > 0 {
		return errors.New("split.silence_threshold_db must be <= 0")
	}
	if c.Split.MinimumSegmentTime < 0 {
		return errors.New("split.minimum_segment_time must be >= 0")
	}
	if _, err := template.New("output").Parse(c.Split.OutputPattern); err != nil {
		return fmt.Errorf("split.output_pattern: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
