package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relay-cli/internal/store"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write local preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			v, ok, err := app.store().Pref(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errNotFound("pref", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": args[0], "value": v}})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := app.store().SetPref(ctx, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": args[0], "value": args[1]}})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "crash-report [on|off]",
		Short: "Show or set whether crash reports may be sent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			s := app.store()
			if len(args) == 1 {
				allowed, err := parseSwitch(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := s.SetCrashReportAllowed(ctx, allowed); err != nil {
					return writeErr(cmd, err)
				}
			}
			allowed, err := s.CrashReportAllowed(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"key":     store.PrefCrashReport,
				"allowed": allowed,
			}})
		},
	})
	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, usageError{arg: s, want: "on|off"}
}
