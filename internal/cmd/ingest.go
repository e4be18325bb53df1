package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Yognotiano/TESIS/internal/app"
	"github.com/Yognotiano/TESIS/internal/ingest"
	storageConfig "github.com/Yognotiano/TESIS/pkg/batch/adapter/storage/config"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	"github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

func newIngestCommand(opts *globalOptions) *cobra.Command {
	var noLock bool
	cmd := &cobra.Command{
		Use:   "ingest [inputs] [outfile]",
		Short: "Build the temps table from thermometer logs",
		Long: `Ingest reads every file matched by the comma separated path/glob list
(default: ingest.default_inputs) and writes one table artifact to
<base_dir>/temp_root. outfile "" or "auto" names it after the dates in
the input file names; any other value contributes only its base name.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if noLock {
				cfg.Thermolog.Ingest.NoLock = true
			}
			params := ingest.Params{}
			if len(args) > 0 {
				params.Inputs = args[0]
			}
			if len(args) > 1 {
				params.Output = args[1]
			}

			def := app.Definition{
				JobName:  "ingestJob",
				StepName: "ingestStep",
				Tasklet: func(d app.Deps) (port.Tasklet, error) {
					options := []ingest.Option{ingest.WithExport(d.Databases)}
					if ref := d.Ingest.MirrorRef; ref != "" {
						var sc storageConfig.StorageConfig
						if err := d.Config.DecodeAdapterConfig("storage", ref, &sc); err != nil {
							return nil, err
						}
						options = append(options, ingest.WithMirror(d.Storage, sc.Prefix))
					}
					return ingest.NewTasklet(d.Ingest, d.Expander, d.Recorder, params, options...), nil
				},
			}
			je, err := opts.run(cmd.Context(), cfg, def)
			if err != nil {
				return err
			}
			if se := je.StepExecutions; len(se) > 0 {
				logger.Debugf("ingest: %d lines read, %d rows written, %d skipped.", se[0].ReadCount, se[0].WriteCount, se[0].SkipReadCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "do not lock the output directory")
	return cmd
}
