package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ordersdash/internal/sample"
)

func newSampleCommand() *cobra.Command {
	opts := sample.DefaultOptions()
	var outDir string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write generated Summary and Secondary workbooks",
		Long: `Generate a realistic pair of source workbooks. The same seed always
produces the same data.`,
		Example: `  # Write Summary.xlsx and Secondary.xlsx into ./data
  ordersdash sample --out data

  # A larger dataset
  ordersdash sample --out data --primary-rows 500 --secondary-rows 2000 --users 50 --days 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd.Context())
			if outDir == "" {
				outDir = e.paths.DataDir
			}

			primary, secondary, err := sample.WriteFiles(outDir, opts, e.logger)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", primary, opts.PrimaryRows)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", secondary, opts.SecondaryRows)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: <base-dir>/data)")
	cmd.Flags().IntVar(&opts.PrimaryRows, "primary-rows", opts.PrimaryRows, "number of Summary rows")
	cmd.Flags().IntVar(&opts.SecondaryRows, "secondary-rows", opts.SecondaryRows, "number of Secondary rows")
	cmd.Flags().IntVar(&opts.Users, "users", opts.Users, "number of distinct users")
	cmd.Flags().IntVar(&opts.Days, "days", opts.Days, "number of distinct order dates")
	cmd.Flags().Float64Var(&opts.MatchRate, "match-rate", opts.MatchRate, "share of Secondary rows that match a Summary row")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	return cmd
}
