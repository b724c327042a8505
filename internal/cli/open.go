package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relay-cli/internal/deeplink"
	"relay-cli/internal/linking"
)

func newOpenCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Open a link in the running client (or start one with it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(args[0])
			if addr == "" {
				addr = app.cfg.Linking.Addr
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			delivered, err := linking.Send(ctx, addr, raw)
			cancel()
			if errors.Is(err, linking.ErrNoInstance) {
				app.LaunchURL = raw
				return runTUI(cmd, app)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"url":       raw,
					"delivered": delivered,
					"route":     deeplink.Resolve(raw),
				},
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address of the running client (default linking.addr)")
	return cmd
}

func newResolveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Print the route a deep link resolves to (null when it is not one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": deeplink.Resolve(args[0])})
		},
	}
}
