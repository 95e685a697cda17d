package cli

import (
	"fmt"

	"bookshelf/internal/view"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dashboard(cmd, view.Selection{})
			if err != nil {
				return err
			}
			printStats(a.Out, d.Stats)
			return nil
		},
	}
}

func newDashboardCmd(a *App) *cobra.Command {
	var sel view.Selection
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show statistics, books and readings together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dashboard(cmd, sel)
			if err != nil {
				return err
			}

			printStats(a.Out, d.Stats)
			fmt.Fprintln(a.Out)
			fmt.Fprintf(a.Out, "Books (%d)\n", len(d.Books))
			printBooks(a.Out, d.Books)
			fmt.Fprintln(a.Out)
			fmt.Fprintf(a.Out, "Readings (%d)\n", len(d.Readings))
			printReadings(a.Out, d.Readings, d.BookTitles)
			if len(d.Genres) > 0 {
				fmt.Fprintln(a.Out)
				fmt.Fprintf(a.Out, "Genres: %s\n", joinGenres(d.Genres))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&sel.Search, "search", "s", "", "match title or author")
	cmd.Flags().StringVar(&sel.Genre, "genre", view.AllGenres, "exact genre, or all")
	cmd.Flags().StringVar(&sel.Status, "status", view.AllStatuses, "in-progress, completed or all")
	return cmd
}

func (a *App) dashboard(cmd *cobra.Command, sel view.Selection) (view.Dashboard, error) {
	ctx, err := a.session(cmd.Context())
	if err != nil {
		return view.Dashboard{}, err
	}
	books, err := a.store.Books.List(ctx)
	if err != nil {
		return view.Dashboard{}, err
	}
	readings, err := a.store.Readings.List(ctx)
	if err != nil {
		return view.Dashboard{}, err
	}
	return view.Build(books, readings, sel), nil
}
