package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *App) *cobra.Command {
	var email, username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := a.ReadPassword("Password: ")
			if err != nil {
				return err
			}
			again, err := a.ReadPassword("Repeat password: ")
			if err != nil {
				return err
			}
			if password != again {
				return errors.New("passwords do not match")
			}

			u, err := a.api.Register(cmd.Context(), strings.TrimSpace(email), strings.TrimSpace(username), password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Account created for %s. Run `shelf login --email %s` to sign in.\n", u.Email, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := a.ReadPassword("Password: ")
			if err != nil {
				return err
			}

			tok, err := a.api.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}

			creds := Credentials{
				APIURL: a.BaseURL,
				UserID: tok.UserID,
				Email:  strings.ToLower(strings.TrimSpace(email)),
				Token:  tok.AccessToken,
			}
			if tok.ExpiresIn > 0 {
				creds.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
			}
			if err := SaveCredentials(a.CredsPath, creds); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Logged in as %s.\n", creds.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := DeleteCredentials(a.CredsPath); err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.api.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "%s <%s> (%s)\n", u.Username, u.Email, u.ID)
			return nil
		},
	}
}
