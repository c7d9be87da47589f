package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/go-catalog/internal/models"
	"github.com/pribylovaa/go-catalog/internal/session"
)

// whoami — вывод whoami в json/yaml.
type whoami struct {
	User  *models.User       `json:"user"            yaml:"user"`
	Token *session.TokenInfo `json:"token,omitempty" yaml:"token,omitempty"`
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}

			u, err := a.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(a.Session.State().Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", userLine(u))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}

			u, err := a.Session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return errors.New(a.Session.State().Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s\n", userLine(u))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}

			a.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Refresh and show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := c.appFor(ctx)
			if err != nil {
				return err
			}

			a.Session.FetchCurrentUser(ctx)

			out := whoami{User: a.Session.State().User}
			if ti, err := a.Session.TokenInfo(ctx); err == nil {
				out.Token = &ti
			} else if !errors.Is(err, session.ErrNoSession) {
				return err
			}

			if c.output != outputTable {
				return encode(cmd.OutOrStdout(), c.output, out)
			}

			if out.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}

			rows := [][2]string{
				{"Name", userLine(*out.User)},
				{"Email", out.User.Email},
			}
			if out.Token != nil {
				rows = append(rows, [2]string{"Token", tokenLine(*out.Token, time.Now())})
			}

			fmt.Fprint(cmd.OutOrStdout(), keyValues(rows))
			return nil
		},
	}
}

func tokenLine(ti session.TokenInfo, now time.Time) string {
	switch {
	case ti.Opaque:
		return "opaque (expiry unknown)"
	case ti.ExpiresAt.IsZero():
		return "no expiry"
	case ti.Expired(now):
		return "expired " + ti.ExpiresAt.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("expires %s (in %s)", ti.ExpiresAt.UTC().Format(time.RFC3339), ti.ExpiresAt.Sub(now).Round(time.Second))
	}
}
