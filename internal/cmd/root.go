// Package cmd implements the thermolog command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Yognotiano/TESIS/internal/app"
	"github.com/Yognotiano/TESIS/pkg/batch/core/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
	baseDir    string
	format     string

	embedded config.EmbeddedConfig
	// extra is appended to the fx graph of every job; tests use it to swap providers.
	extra []fx.Option
}

// NewRootCommand creates the root command. embedded is the built-in application.yaml.
func NewRootCommand(embedded config.EmbeddedConfig) *cobra.Command {
	return newRootCommand(&globalOptions{embedded: embedded})
}

func newRootCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thermolog",
		Short: "Thermometer log ingestion and analysis",
		Long: `thermolog turns thermometer text logs into a columnar temps table
(with files and meta side tables), selects time ranges from it,
and fills detector occupancy histograms.`,
		Version:      Version,
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "YAML file merged over the built-in configuration")
	f.StringVar(&opts.envFile, "env-file", "", ".env file loaded before reading THERMOLOG_* variables")
	f.StringVar(&opts.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	f.StringVar(&opts.baseDir, "base-dir", "", "base directory of the temp_root output directory")
	f.StringVar(&opts.format, "format", "", "artifact format: parquet or sqlite")

	cmd.AddCommand(newIngestCommand(opts))
	cmd.AddCommand(newRangeCommand(opts))
	cmd.AddCommand(newHistoCommand(opts))
	return cmd
}

// load builds the configuration with flag overrides applied last.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.envFile, o.embedded, o.configFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Thermolog.System.Logging.Level = o.logLevel
	}
	if o.baseDir != "" {
		cfg.Thermolog.Ingest.BaseDir = o.baseDir
	}
	switch o.format {
	case "":
	case config.FormatParquet, config.FormatSQLite:
		cfg.Thermolog.Ingest.Format = o.format
	default:
		return nil, fmt.Errorf("unknown format %q, want %s or %s", o.format, config.FormatParquet, config.FormatSQLite)
	}
	logger.SetLogLevel(cfg.Thermolog.System.Logging.Level)
	return cfg, nil
}

// run executes def and reports a failed job as an error.
func (o *globalOptions) run(ctx context.Context, cfg *config.Config, def app.Definition) (*model.JobExecution, error) {
	je, err := app.Run(ctx, cfg, def, o.extra...)
	if err != nil {
		return je, err
	}
	if je.Status != model.BatchStatusCompleted {
		return je, fmt.Errorf("job %s finished with status %s", je.JobName, je.Status)
	}
	return je, nil
}
