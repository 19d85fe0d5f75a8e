package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapchat/internal/dataset"
)

// ProfileOptions holds options for the profile command.
type ProfileOptions struct {
	DataPath string
	Sample   int
}

// NewProfileCommand creates the profile command. It needs no reasoning
// credential; profiling is local.
func NewProfileCommand() *cobra.Command {
	opts := &ProfileOptions{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the structural profile of a dataset",
		Example: `  leapchat profile --data sales.csv
  leapchat profile --data sales.csv --sample 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfile(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.DataPath, "data", "d", "", "Path to the CSV dataset")
	cmd.Flags().IntVar(&opts.Sample, "sample", 5, "Number of sample rows to show (0 to disable)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runProfile(cmd *cobra.Command, opts *ProfileOptions) error {
	ds, err := loadDataset(cmd.Context(), opts.DataPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderProfile(out, dataset.Profile(ds))

	if opts.Sample > 0 && ds.NumRows() > 0 {
		renderSample(out, ds, opts.Sample)
	}
	return nil
}
