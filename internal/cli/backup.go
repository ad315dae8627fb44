package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"MiniCatalog/internal/catalog"
)

func newBackupCmd() *cobra.Command {
	var dataPath, out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a compressed snapshot of the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := catalog.NewFileStore(dataPath).Load(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := catalog.WriteArchive(f, items); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "backed up %d items to %s\n", len(items), out)
			return err
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", catalog.DefaultDataPath, "Path of the JSON data file")
	cmd.Flags().StringVarP(&out, "out", "o", "items.mcat", "Archive file to write")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var dataPath, in string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the data file with the contents of a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := catalog.ReadArchive(f)
			if err != nil {
				return err
			}
			if err := catalog.NewFileStore(dataPath).Save(cmd.Context(), items); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %d items to %s\n", len(items), dataPath)
			return err
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", catalog.DefaultDataPath, "Path of the JSON data file")
	cmd.Flags().StringVarP(&in, "in", "i", "items.mcat", "Archive file to read")
	return cmd
}
