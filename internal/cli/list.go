package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"MiniCatalog/pkg/catalogclient"
)

const defaultPageSize = 20

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		query  string
		limit  int
		page   int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			if page > 0 {
				offset = (page - 1) * limit
			}

			p, err := opts.client().List(cmd.Context(), catalogclient.ListOptions{
				Query:  query,
				Limit:  &limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}

			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			return printPage(cmd.OutOrStdout(), p, query, limit, offset)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive name filter")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultPageSize, "Items per page")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number starting at 1 (overrides --offset)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of matching items to skip")
	return cmd
}

func printPage(w io.Writer, p catalogclient.Page, query string, limit, offset int) error {
	if len(p.Items) == 0 {
		if query != "" {
			_, err := fmt.Fprintf(w, "no items match %q\n", query)
			return err
		}
		_, err := fmt.Fprintln(w, "no items")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, it := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, formatPrice(it.Price))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	current, pages := pageOf(p.Total, limit, offset)
	_, err := fmt.Fprintf(w, "\npage %d of %d (%d matching items)\n", current, pages, p.Total)
	return err
}

// pageOf returns the 1-based current page and the page count.
func pageOf(total, limit, offset int) (current, pages int) {
	if limit <= 0 {
		return 1, 1
	}
	pages = (total + limit - 1) / limit
	current = offset/limit + 1
	return current, max(pages, 1)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}
