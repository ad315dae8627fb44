package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			avg := "n/a"
			if s.AveragePrice != nil {
				avg = formatPrice(*s.AveragePrice)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Total items:   %d\nAverage price: %s\n", s.Total, avg)
			return err
		},
	}
}
