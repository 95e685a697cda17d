// Package cli implements the shelf command line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/recordstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const DefaultAPIURL = "http://localhost:8080"

// App carries what every command needs. Fields are set by main, or by tests.
type App struct {
	BaseURL   string
	CredsPath string
	In        io.Reader
	Out       io.Writer
	Logger    *zap.Logger

	// ReadPassword prompts for a secret without echoing it.
	ReadPassword func(prompt string) (string, error)
	HTTPClient   *http.Client

	in    *bufio.Reader
	api   *apiclient.Client
	store *recordstore.Client
}

// Run executes one command line and tears the record store down afterwards.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	a.in = bufio.NewReader(a.In)

	root := NewRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Out)
	root.PersistentPreRun = func(*cobra.Command, []string) { a.connect() }
	defer func() {
		if a.store != nil {
			a.store.Close()
		}
	}()

	return explain(root.ExecuteContext(ctx))
}

func (a *App) connect() {
	var opts []apiclient.Option
	if a.HTTPClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(a.HTTPClient))
	}
	a.api = apiclient.New(a.BaseURL, opts...)
	a.store = recordstore.New(a.api, a.api, recordstore.WithLogger(a.Logger))
}

func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Keep track of your books and what you are reading",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if a.BaseURL == "" {
		a.BaseURL = DefaultAPIURL
	}
	root.PersistentFlags().StringVar(&a.BaseURL, "api-url", a.BaseURL, "bookshelf API base URL (env SHELF_API_URL)")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newBooksCmd(a),
		newReadingsCmd(a),
		newCoversCmd(a),
		newStatsCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// session returns ctx carrying the saved identity.
func (a *App) session(ctx context.Context) (context.Context, error) {
	creds, err := LoadCredentials(a.CredsPath)
	if err != nil {
		return nil, err
	}
	return recordstore.WithIdentity(ctx, recordstore.Identity{UserID: creds.UserID, Token: creds.Token}), nil
}

// confirm asks a y/N question. Anything but yes declines.
func (a *App) confirm(prompt string) (bool, error) {
	fmt.Fprintf(a.Out, "%s [y/N]: ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, recordstore.ErrUnauthenticated):
		return fmt.Errorf("%w; run `shelf login` first", err)
	}
	return err
}
