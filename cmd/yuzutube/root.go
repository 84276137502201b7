package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuzutube/gateway/app"
	"github.com/yuzutube/gateway/config"
	"github.com/yuzutube/gateway/internal/observability"
	"go.uber.org/zap"
)

// globalFlags override the environment for a single invocation.
type globalFlags struct {
	instances []string
	timeout   time.Duration
	logLevel  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "yuzutube",
		Short:        "Privacy-preserving YouTube front end backed by public Invidious instances",
		Version:      app.Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringSliceVar(&flags.instances, "instances", nil, "Invidious instance base URLs in trial order (overrides INVIDIOUS_INSTANCES)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Per-instance attempt timeout (overrides INVIDIOUS_TIMEOUT)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(flags),
		newResolveCmd(flags),
		newProbeCmd(flags),
	)
	return root
}

// bootstrap loads configuration, applies flag overrides and builds the logger.
func bootstrap(cmd *cobra.Command, flags *globalFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if len(flags.instances) > 0 {
		cfg.Invidious.Instances = flags.instances
	}
	if flags.timeout > 0 {
		cfg.Invidious.Timeout = flags.timeout
	}
	if flags.logLevel != "" {
		cfg.Observability.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid flags: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	logger = logger.With(zap.String("environment", cfg.Environment))
	return cfg, logger, nil
}
