package main

import (
	"log/slog"

	"github.com/aouyang1/go-tsestimator/dataset"
	"github.com/aouyang1/go-tsestimator/internal/config"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by the subcommands once the configuration is loaded.
type app struct {
	configFile string
	asJSON     bool

	cfg      config.Config
	logger   *zerolog.Logger
	profiler interface{ Stop() }
}

func (a *app) loader() *dataset.Loader {
	return dataset.NewLoader(a.cfg.DataHome, slog.Default())
}

func newRootCmd(logger *zerolog.Logger) *cobra.Command {
	a := &app{logger: logger}

	rootCmd := &cobra.Command{
		Use:           "tsforecast",
		Short:         "Fit, score and forecast time series datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			console, err := setupLogging(*logger, cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			*a.logger = console

			if cfg.Profile != "" {
				a.profiler = profile.Start(
					profile.CPUProfile,
					profile.ProfilePath(cfg.Profile),
					profile.NoShutdownHook,
					profile.Quiet,
				)
				a.logger.Info().Str("path", cfg.Profile).Msg("cpu profiling enabled")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.profiler != nil {
				a.profiler.Stop()
				a.profiler = nil
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to configuration file")
	flags.String("data-home", dataset.DefaultDataHome, "Directory holding the frequency sub-directories of datasets")
	flags.String("log-level", "info", "One of debug, info, warn or error")
	flags.String("profile", "", "Directory to write a cpu profile to")
	flags.BoolVar(&a.asJSON, "json", false, "Write json instead of tables")

	rootCmd.AddCommand(newInventoryCmd(a))
	rootCmd.AddCommand(newAggregateCmd(a))
	rootCmd.AddCommand(newForecastCmd(a))
	return rootCmd
}
