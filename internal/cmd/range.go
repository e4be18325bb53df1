package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Yognotiano/TESIS/internal/app"
	"github.com/Yognotiano/TESIS/internal/selection"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
)

func newRangeCommand(opts *globalOptions) *cobra.Command {
	params := selection.RangeParams{}
	cmd := &cobra.Command{
		Use:   "range <table> <start> [end]",
		Short: "Select a time window from a temps table",
		Long: `Range prints the cut and the number of entries between start and end
("YYYY-MM-DD HH:MM:SS"; no end means to the end of the table), then writes
the projected series as tab separated x/y pairs to stdout.`,
		Example: `  thermolog range temps_20250819.root "2025-08-19 15:22:22"
  thermolog range temps_20250819.root "2025-08-19 15:22:22" "2025-08-20 07:59:22" --file-id 0
  thermolog range temps_20250819.root "2025-08-19 15:22:22" "2025-08-20 07:59:22" --subset subset.root`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			p := params
			p.Table, p.Start = args[0], args[1]
			if len(args) > 2 {
				p.End = args[2]
			}
			p.Compression = cfg.Thermolog.Ingest.Compression

			def := app.Definition{
				JobName:  "rangeJob",
				StepName: "rangeStep",
				Tasklet: func(d app.Deps) (port.Tasklet, error) {
					return selection.NewRangeTasklet(p, cmd.OutOrStdout(), d.Recorder), nil
				},
			}
			_, err = opts.run(cmd.Context(), cfg, def)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&params.Expr, "expr", selection.DefaultExpr, `projection "Y:X" or "Y" over the table columns`)
	f.IntVar(&params.FileID, "file-id", selection.AllFiles, "only rows of this file_id (-1 for all)")
	f.StringVar(&params.Subset, "subset", "", "write the selected rows to this artifact")
	return cmd
}
