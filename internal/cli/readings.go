package cli

import (
	"errors"
	"fmt"
	"time"

	"bookshelf/internal/platform/optional"
	"bookshelf/internal/reading"
	"bookshelf/internal/view"

	"github.com/spf13/cobra"
)

func newReadingsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "readings",
		Aliases: []string{"reading"},
		Short:   "Log and review reading sessions",
	}
	cmd.AddCommand(newReadingsListCmd(a), newReadingsAddCmd(a), newReadingsEditCmd(a), newReadingsDeleteCmd(a))
	return cmd
}

func newReadingsListCmd(a *App) *cobra.Command {
	var f view.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List readings, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			books, err := a.store.Books.List(ctx)
			if err != nil {
				return err
			}
			readings, err := a.store.Readings.List(ctx)
			if err != nil {
				return err
			}
			d := view.Build(books, readings, view.Selection{Search: f.Search, Status: f.Status})
			printReadings(a.Out, d.Readings, d.BookTitles)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "match the book's title or author")
	cmd.Flags().StringVar(&f.Status, "status", view.AllStatuses, "in-progress, completed or all")
	return cmd
}

type readingFlags struct {
	cmd *cobra.Command

	bookID, status, start, end, notes string
	rating, pagesRead                 int
}

func bindReadingFlags(cmd *cobra.Command) *readingFlags {
	f := &readingFlags{cmd: cmd}
	fs := cmd.Flags()
	fs.StringVar(&f.bookID, "book", "", "id of the book being read")
	fs.StringVar(&f.status, "status", "", "in-progress or completed")
	fs.StringVar(&f.start, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&f.end, "end", "", "end date, YYYY-MM-DD (empty clears)")
	fs.StringVar(&f.notes, "notes", "", "personal notes (empty clears)")
	fs.IntVar(&f.rating, "rating", 0, "rating from 1 to 5, 0 for none")
	fs.IntVar(&f.pagesRead, "pages-read", 0, "pages read so far")
	return f
}

func (f *readingFlags) changed(name string) bool { return f.cmd.Flags().Changed(name) }

func (f *readingFlags) input(today time.Time) reading.Input {
	in := reading.Input{BookID: f.bookID, Status: f.status, StartDate: f.start}
	if !f.changed("start") {
		in.StartDate = today.Format(reading.DateLayout)
	}
	if f.changed("end") {
		in.EndDate = &f.end
	}
	if f.changed("notes") {
		in.Notes = &f.notes
	}
	if f.changed("rating") {
		in.Rating = &f.rating
	}
	if f.changed("pages-read") {
		in.PagesRead = &f.pagesRead
	}
	return in
}

func (f *readingFlags) patch() reading.Patch {
	var p reading.Patch
	if f.changed("book") {
		p.BookID = optional.Of(f.bookID)
	}
	if f.changed("status") {
		p.Status = optional.Of(f.status)
	}
	if f.changed("start") {
		p.StartDate = optional.Of(f.start)
	}
	if f.changed("end") {
		p.EndDate = clearable(f.end)
	}
	if f.changed("notes") {
		p.Notes = clearable(f.notes)
	}
	if f.changed("rating") {
		if f.rating == 0 {
			p.Rating = optional.Null[int]()
		} else {
			p.Rating = optional.Of(f.rating)
		}
	}
	if f.changed("pages-read") {
		p.PagesRead = optional.Of(f.pagesRead)
	}
	return p
}

func newReadingsAddCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a reading of a book",
		Args:  cobra.NoArgs,
	}
	f := bindReadingFlags(cmd)
	_ = cmd.MarkFlagRequired("book")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		r, err := a.store.CreateReading(ctx, f.input(time.Now()))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Logged reading %s (%s).\n", r.ID, r.Status)
		return nil
	}
	return cmd
}

func newReadingsEditCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a reading",
		Args:  cobra.ExactArgs(1),
	}
	f := bindReadingFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		p := f.patch()
		if p.IsEmpty() {
			return errors.New("nothing to change")
		}
		r, err := a.store.UpdateReading(ctx, args[0], p)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Updated reading %s (%s).\n", r.ID, r.Status)
		return nil
	}
	return cmd
}

func newReadingsDeleteCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete reading %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.Out, "Cancelled.")
					return nil
				}
			}
			if err := a.store.DeleteReading(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Deleted reading %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
