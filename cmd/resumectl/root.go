package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-matcher/internal/app"
	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/logger"
)

const name = "resumectl"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:           name,
		Short:         "resumectl ingests resume PDFs and ranks them against job descriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "log-json", false, "json format for logging")
}

// setup loads configuration and builds the services. Flags override the
// LOG_DEBUG and LOG_JSON settings.
func setup(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	if debug {
		cfg.Log.Debug = true
	}
	if jsonLog {
		cfg.Log.JSON = true
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}
