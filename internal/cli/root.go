package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"relay-cli/internal/config"
	"relay-cli/internal/format"
	"relay-cli/internal/logging"
	"relay-cli/internal/store"
)

type App struct {
	ConfigDir  string
	DBPath     string
	LogLevel   string
	PrettyJSON bool
	Format     string

	// LaunchURL is the URL the TUI starts with (--url, or `relay open` with no
	// running instance).
	LaunchURL string

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Relay terminal chat client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  relay

  # Start the TUI on a deep link
  relay --url 'relay://room?host=open.relay.chat&rid=GENERAL'

  # Hand a link to the running instance
  relay open 'https://go.relay.chat/room?rid=GENERAL'

  # Inspect what a link resolves to
  relay resolve 'relay://auth?host=open.relay.chat&token=T'
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		logging.Close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("RELAY_CONFIG_DIR", ""), "Config directory (default ~/.relay)")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to the sqlite database (overrides db.path)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("RELAY_FORMAT", "json"), "Output format (json|yaml)")
	cmd.Flags().StringVar(&app.LaunchURL, "url", "", "Deep link to open on startup")

	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newResolveCmd(app))
	cmd.AddCommand(newRoutesCmd(app))
	cmd.AddCommand(newNotifyCmd(app))
	cmd.AddCommand(newPrefsCmd(app))
	cmd.AddCommand(newSessionCmd(app))

	return cmd
}

// load resolves config, applies flag overrides and sets up logging.
func (app *App) load() error {
	cfg, err := config.Load(app.ConfigDir)
	if err != nil {
		return err
	}
	if strings.TrimSpace(app.DBPath) != "" {
		cfg.DB.Path = app.DBPath
	}
	if strings.TrimSpace(app.LogLevel) != "" {
		cfg.Log.Level = app.LogLevel
	}
	app.cfg = cfg
	return logging.Setup(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level})
}

func (app *App) store() store.Store {
	path := app.cfg.DB.Path
	if strings.TrimSpace(path) == "" {
		path = store.DefaultPath(app.cfg.Dir)
	}
	return store.Store{Path: path}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
