package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"m4bind/internal/audiobook"
	"m4bind/internal/config"
	"m4bind/internal/logging"
	"m4bind/internal/services"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	workers    int
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// applyOverrides lets global flags win over file values.
func (c *commandContext) applyOverrides(cfg *config.Config) {
	if level := strings.ToLower(strings.TrimSpace(c.flags.logLevel)); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.ToLower(strings.TrimSpace(c.flags.logFormat)); format != "" {
		cfg.Logging.Format = format
	}
	if c.flags.workers > 0 {
		cfg.Bind.Workers = c.flags.workers
	}
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "logging", "init", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// session returns the config, logger, and external tools a command needs.
func (c *commandContext) session() (*config.Config, *slog.Logger, audiobook.Tools, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, audiobook.Tools{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, audiobook.Tools{}, err
	}
	return cfg, logger, audiobook.NewTools(cfg, logger), nil
}

// newBook returns an empty Book wired from configuration.
func (c *commandContext) newBook() (*audiobook.Book, error) {
	cfg, logger, tools, err := c.session()
	if err != nil {
		return nil, err
	}
	book := audiobook.New(tools, audiobook.OptionsFromConfig(cfg), logger)
	book.KeepTempFiles = cfg.Bind.KeepTempFiles
	return book, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
