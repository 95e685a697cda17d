package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bookshelf/internal/book"
	"bookshelf/internal/cover"
	"bookshelf/internal/platform/optional"
	"bookshelf/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBooksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"book"},
		Short:   "Manage your catalogue",
	}
	cmd.AddCommand(newBooksListCmd(a), newBooksAddCmd(a), newBooksEditCmd(a), newBooksDeleteCmd(a))
	return cmd
}

func newBooksListCmd(a *App) *cobra.Command {
	var f view.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
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
			printBooks(a.Out, view.FilterBooks(books, f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "match title or author")
	cmd.Flags().StringVar(&f.Genre, "genre", view.AllGenres, "exact genre, or all")
	return cmd
}

// bookFlags binds the editable book fields. Only flags given on the command
// line end up in the input or patch.
type bookFlags struct {
	cmd *cobra.Command

	title, author, genre, isbn, cover, synopsis string
	pages                                       int
	coverFile                                   string
}

func bindBookFlags(cmd *cobra.Command) *bookFlags {
	f := &bookFlags{cmd: cmd}
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.author, "author", "", "author")
	fs.StringVar(&f.genre, "genre", "", "genre (empty clears)")
	fs.IntVar(&f.pages, "pages", 0, "page count")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN-10 or ISBN-13 (empty clears)")
	fs.StringVar(&f.cover, "cover-url", "", "cover image URL (empty clears)")
	fs.StringVar(&f.synopsis, "synopsis", "", "synopsis (empty clears)")
	fs.StringVar(&f.coverFile, "cover-file", "", "upload this image and use it as the cover")
	return f
}

func (f *bookFlags) changed(name string) bool { return f.cmd.Flags().Changed(name) }

func (f *bookFlags) input() book.Input {
	in := book.Input{Title: f.title, Author: f.author}
	if f.changed("genre") {
		in.Genre = &f.genre
	}
	if f.changed("pages") {
		in.Pages = &f.pages
	}
	if f.changed("isbn") {
		in.ISBN = &f.isbn
	}
	if f.changed("cover-url") {
		in.CoverImageURL = &f.cover
	}
	if f.changed("synopsis") {
		in.Synopsis = &f.synopsis
	}
	return in
}

func (f *bookFlags) patch() book.Patch {
	var p book.Patch
	if f.changed("title") {
		p.Title = optional.Of(f.title)
	}
	if f.changed("author") {
		p.Author = optional.Of(f.author)
	}
	if f.changed("genre") {
		p.Genre = clearable(f.genre)
	}
	if f.changed("pages") {
		p.Pages = optional.Of(f.pages)
	}
	if f.changed("isbn") {
		p.ISBN = clearable(f.isbn)
	}
	if f.changed("cover-url") {
		p.CoverImageURL = clearable(f.cover)
	}
	if f.changed("synopsis") {
		p.Synopsis = clearable(f.synopsis)
	}
	return p
}

func clearable(v string) optional.Field[string] {
	if strings.TrimSpace(v) == "" {
		return optional.Null[string]()
	}
	return optional.Of(v)
}

// uploadCover stores the --cover-file image, if any.
func (a *App) uploadCover(cmd *cobra.Command, f *bookFlags) (*cover.Asset, error) {
	if f.coverFile == "" {
		return nil, nil
	}
	if f.changed("cover-url") {
		return nil, errors.New("--cover-file and --cover-url are mutually exclusive")
	}
	data, err := os.ReadFile(f.coverFile)
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	ctx, err := a.session(cmd.Context())
	if err != nil {
		return nil, err
	}
	asset, err := a.api.UploadCover(ctx, data, filepath.Base(f.coverFile))
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// discardCover removes an uploaded cover that ended up unused.
func (a *App) discardCover(cmd *cobra.Command, asset *cover.Asset) {
	if asset == nil {
		return
	}
	ctx, err := a.session(cmd.Context())
	if err != nil {
		return
	}
	if err := a.api.DeleteCover(ctx, asset.Path); err != nil {
		a.Logger.Warn("could not remove unused cover", zap.String("path", asset.Path), zap.Error(err))
	}
}

func newBooksAddCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
	}
	f := bindBookFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		in := f.input()
		if err := in.Validate(); err != nil {
			return err
		}

		asset, err := a.uploadCover(cmd, f)
		if err != nil {
			return err
		}
		if asset != nil {
			in.CoverImageURL = &asset.URL
		}

		b, err := a.store.CreateBook(ctx, in)
		if err != nil {
			a.discardCover(cmd, asset)
			return err
		}
		fmt.Fprintf(a.Out, "Added %q (%s).\n", b.Title, b.ID)
		return nil
	}
	return cmd
}

func newBooksEditCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a book",
		Args:  cobra.ExactArgs(1),
	}
	f := bindBookFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		p := f.patch()
		if p.IsEmpty() && f.coverFile == "" {
			return errors.New("nothing to change")
		}
		if err := p.Validate(); err != nil {
			return err
		}

		asset, err := a.uploadCover(cmd, f)
		if err != nil {
			return err
		}
		if asset != nil {
			p.CoverImageURL = optional.Of(asset.URL)
		}

		b, err := a.store.UpdateBook(ctx, args[0], p)
		if err != nil {
			a.discardCover(cmd, asset)
			return err
		}
		fmt.Fprintf(a.Out, "Updated %q.\n", b.Title)
		return nil
	}
	return cmd
}

func newBooksDeleteCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book and all of its readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]

			label := id
			if books, err := a.store.Books.List(ctx); err == nil {
				if i := slices.IndexFunc(books, func(b book.Book) bool { return b.ID == id }); i >= 0 {
					label = fmt.Sprintf("%q", books[i].Title)
				}
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete %s and all of its readings?", label))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.Out, "Cancelled.")
					return nil
				}
			}

			if err := a.store.DeleteBook(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Deleted %s.\n", label)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
