package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"MiniCatalog/pkg/catalogclient"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var n catalogclient.NewItem

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := opts.client().Create(cmd.Context(), n)
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created item %d\n", it.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&n.Name, "name", "", "Item name")
	cmd.Flags().StringVar(&n.Category, "category", "", "Item category")
	cmd.Flags().Float64Var(&n.Price, "price", 0, "Item price")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}
