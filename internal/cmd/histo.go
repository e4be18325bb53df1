package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Yognotiano/TESIS/internal/app"
	"github.com/Yognotiano/TESIS/internal/histogram"
	"github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
)

func newHistoCommand(opts *globalOptions) *cobra.Command {
	params := histogram.Params{}
	cmd := &cobra.Command{
		Use:   "histo <events>",
		Short: "Fill the A/B signal density histograms",
		Long: `Histo fills density_k, a 2D histogram of (Ak, Bk), from the events table
(columns evn, A1..A3, B1..B3) and writes histo_Ak_Bk.root as a bin table.
Binning comes from the histogram section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			p := params
			p.Events = args[0]
			p.Compression = cfg.Thermolog.Ingest.Compression

			def := app.Definition{
				JobName:  "histoJob",
				StepName: "histoStep",
				Tasklet: func(d app.Deps) (port.Tasklet, error) {
					return histogram.NewTasklet(&d.Config.Thermolog.Histogram, p, d.Recorder), nil
				},
			}
			_, err = opts.run(cmd.Context(), cfg, def)
			return err
		},
	}
	f := cmd.Flags()
	f.IntVar(&params.Pair, "pair", 0, "pair k in 1..3; 0 fills all three")
	f.IntVar(&params.First, "first", 0, "first entry read")
	f.IntVar(&params.Last, "last", 0, "entry after the last one read; 0 reads to the end")
	f.StringVar(&params.OutputDir, "out-dir", "", "directory of the histogram tables (default: next to the events)")
	return cmd
}
