package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}

			it, err := opts.client().Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ID:       %d\nName:     %s\nCategory: %s\nPrice:    %s\n",
				it.ID, it.Name, it.Category, formatPrice(it.Price))
			return err
		},
	}
}
