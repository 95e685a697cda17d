package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCoversCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Upload and remove cover images",
	}

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read cover: %w", err)
			}
			asset, err := a.api.UploadCover(ctx, data, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "path: %s\nurl:  %s\n", asset.Path, asset.URL)
			return nil
		},
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete an uploaded image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.Out, "Cancelled.")
					return nil
				}
			}
			if err := a.api.DeleteCover(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Deleted %s.\n", args[0])
			return nil
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(upload, remove)
	return cmd
}
