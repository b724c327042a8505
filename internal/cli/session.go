package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"relay-cli/internal/app"
	"relay-cli/internal/store"
)

func newSessionCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the stored login session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			sess, err := a.store().CurrentSession(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"data": sess})
		},
	}

	var sess store.Session
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a session and make it current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			sess.Server = app.NormalizeHost(sess.Server)
			if err := a.store().SaveSession(ctx, sess); err != nil {
				return writeErr(cmd, err)
			}
			current, err := a.store().CurrentSession(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"data": current})
		},
	}
	set.Flags().StringVar(&sess.Server, "server", "", "Server host (required)")
	set.Flags().StringVar(&sess.UserID, "user-id", "", "User id")
	set.Flags().StringVar(&sess.Username, "username", "", "Username (empty lands on the set-username screen)")
	set.Flags().StringVar(&sess.Token, "token", "", "Auth token")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := a.store().ClearSession(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, a, map[string]any{"data": nil})
		},
	})
	return cmd
}
