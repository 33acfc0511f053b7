package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/t0bias84/hagelskott/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Store an API token",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		Long: `Store the bearer token used for API requests.

The token is read from --token, or from stdin when the flag is omitted.
It is saved with owner-only permissions. HAGEL_TOKEN, when set, takes
precedence over the stored token.`,
		Example: `  hagel login --token eyJhbGciOi...
  pass show forum/token | hagel login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if err := auth.CheckExpiry(token, time.Now()); err != nil {
				return err
			}
			if err := a.tokens.Save(ctx, token); err != nil {
				return err
			}

			info := map[string]any{"token_file": a.tokens.Path()}
			if claims, err := auth.Inspect(token); err == nil && claims.Username != "" {
				info["user"] = claims.Username
			}
			return a.out.print(info, func(w io.Writer) error {
				if user, ok := info["user"]; ok {
					fmt.Fprintf(w, "Logged in as %s\n", user)
				} else {
					fmt.Fprintln(w, "Token saved")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token")

	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove the stored API token",
		GroupID: GroupAccount,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			return a.out.print(map[string]any{"logged_out": true}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Logged out")
				return err
			})
		},
	}
}
