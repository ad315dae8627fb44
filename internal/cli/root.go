// Package cli implements the catalogctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"MiniCatalog/pkg/catalogclient"
)

const defaultServer = "http://localhost:3001"

type rootOptions struct {
	server  string
	format  string
	timeout time.Duration
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Browse and manage the item catalog",
		Long:          "A small client for the catalog API: list, search, page through and add items, and back up the data file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "json" && opts.format != "text" {
				return fmt.Errorf("unknown format %q (want json or text)", opts.format)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.server, "server", "s", serverFromEnv(), "Catalog API base URL (default: $CATALOG_URL or "+defaultServer+")")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: json or text")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Request timeout")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newStatsCmd(opts),
		newBackupCmd(),
		newRestoreCmd(),
	)
	return root
}

func serverFromEnv() string {
	if v := os.Getenv("CATALOG_URL"); v != "" {
		return v
	}
	return defaultServer
}

func (o *rootOptions) client() *catalogclient.Client {
	c := catalogclient.New(o.server)
	c.Client.Timeout = o.timeout
	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
