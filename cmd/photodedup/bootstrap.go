package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

var cliLogger = logging.Get("cli")

// initializeLogging loads the configuration, prepares the config and state
// directories and starts file logging. It runs before every command.
func initializeLogging(cmd *cobra.Command, _ []string) error {
	var (
		flags    *pflag.FlagSet
		bindings map[string]string
	)
	if cmd != nil {
		// Scan flags live on the root command; subcommands see their defaults.
		flags = rootCmd.Flags()
		bindings = flagBindings
	}

	cfg, err := config.LoadWithFlags(cfgFile, flags, bindings)
	if err != nil {
		return err
	}
	appConfig = cfg

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if cfg.Logging.Path == "" {
		if err := config.EnsureStateDir(); err != nil {
			return err
		}
	}

	if err := logging.Init(buildLoggingConfig(cfg)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cliLogger.Debug("configuration loaded", "file", cfg.File, "policy", cfg.Policy)
	return nil
}

// buildLoggingConfig maps the file configuration onto the logging package.
// Console output follows --verbose and --quiet.
func buildLoggingConfig(cfg *config.Config) logging.Config {
	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}

	switch {
	case verbose:
		logCfg.ConsoleLevel = "debug"
		logCfg.Level = "debug"
		logCfg.Components = nil
	case quiet:
		logCfg.ConsoleLevel = ""
	default:
		logCfg.ConsoleLevel = "warn"
	}

	return logCfg
}

// parseRotationConfig converts the string-sized rotation settings. An empty
// or invalid max_size falls back to the logging default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := logging.DefaultRotationConfig().MaxSize
	if rc.MaxSize != "" {
		if parsed, err := types.ParseSize(rc.MaxSize); err == nil && parsed > 0 {
			maxSize = parsed
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
