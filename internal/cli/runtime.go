package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"relay-cli/internal/app"
	"relay-cli/internal/keycmd"
	"relay-cli/internal/layout"
	"relay-cli/internal/linking"
	"relay-cli/internal/locale"
	"relay-cli/internal/logging"
	"relay-cli/internal/nav"
	"relay-cli/internal/push"
	"relay-cli/internal/routes"
	"relay-cli/internal/startup"
	"relay-cli/internal/state"
	"relay-cli/internal/store"
	"relay-cli/internal/telemetry"
	"relay-cli/internal/tui"
)

// runtime is one wired client instance.
type runtime struct {
	db        store.Store
	state     *state.Store
	nav       *nav.Navigator
	tracker   *nav.Tracker
	table     *routes.Table
	locale    *locale.Translator
	hub       *linking.Hub
	server    *linking.Server
	startup   *startup.Coordinator
	reporter  *telemetry.Reporter
	analytics *telemetry.Analytics
	emitter   *keycmd.Emitter
	keys      *keycmd.Dispatcher
	layout    *layout.Detector
}

func newRuntime(a *App, launchURL string) (*runtime, error) {
	cfg := a.cfg
	tr, err := locale.New(cfg.Locale)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		db:        a.store(),
		state:     state.NewStore(),
		table:     routes.NewTable(tui.Screens(tr)),
		locale:    tr,
		hub:       linking.NewHub(),
		reporter:  telemetry.NewReporter(),
		analytics: telemetry.NewAnalytics(),
		emitter:   keycmd.NewEmitter(),
	}
	rt.tracker = nav.NewTracker(app.ScreenViews(rt.analytics))
	rt.nav = nav.New(rt.table, nav.Options{Dispatch: rt.state, Tracker: rt.tracker})
	rt.state.Subscribe(rt.nav.Subscriber())
	fx := &app.Effects{Sessions: rt.db, Nav: rt.nav}
	fx.Register(rt.state)

	rt.keys = &keycmd.Dispatcher{Emitter: rt.emitter, Store: rt.state}
	rt.layout = &layout.Detector{
		Mode:       layout.ParseMode(cfg.Layout.Tablet),
		MinWidth:   cfg.Layout.TabletMinWidth,
		Dispatcher: rt.state,
	}

	rt.server, err = linking.NewServer(linking.ServerConfig{Addr: cfg.Linking.Addr}, rt.hub)
	if err != nil {
		return nil, err
	}
	rt.startup = &startup.Coordinator{
		Notifications: push.QueueSource{Store: rt.db},
		Opener:        push.Handler{Dispatcher: rt.state},
		URLs:          linking.StaticSource{URL: launchURL},
		Dispatcher:    rt.state,
		ListenerDelay: cfg.Linking.ListenerDelay,
	}
	return rt, nil
}

// start runs the startup sequence and arms the background inputs. It returns
// once the initial route has been decided.
func (rt *runtime) start(ctx context.Context, onErr startup.OnError) (startup.Outcome, error) {
	log := logging.For("cli")

	startup.InitCrashReport(ctx, rt.db, rt.reporter, rt.analytics, onErr)

	if err := rt.server.Start(); err != nil {
		// Another instance owns the address; links still work through --url.
		log.Warn("url listener unavailable", "addr", rt.server.Addr(), "err", err)
	} else {
		log.Info("url listener", "addr", rt.server.Addr())
	}

	out, err := rt.startup.Run(ctx)
	if err != nil {
		return out, err
	}
	rt.startup.ArmURLListener(rt.hub)
	log.Info("startup", "path", out.Path, "url", out.URL)
	return out, nil
}

func (rt *runtime) close() {
	rt.startup.Teardown()
	rt.keys.Detach()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rt.server.Shutdown(ctx)
	rt.tracker.Close()
}

func (rt *runtime) tuiDeps(a *App) tui.Deps {
	return tui.Deps{
		Store:    rt.state,
		Nav:      rt.nav,
		Table:    rt.table,
		Registry: routes.NewRegistry(rt.table),
		Locale:   rt.locale,
		Emitter:  rt.emitter,
		Keys:     rt.keys,
		Bindings: keycmd.DefaultBindings(a.cfg.Keys.Escape...),
		Layout:   rt.layout,
	}
}

func runTUI(cmd *cobra.Command, a *App) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return writeErr(cmd, errNotATerminal)
	}

	rt, err := newRuntime(a, a.LaunchURL)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer rt.close()
	defer rt.reporter.Recover()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if _, err := rt.start(ctx, startup.ParseOnError(a.cfg.CrashReport.OnError)); err != nil {
		return writeErr(cmd, err)
	}

	if dev := a.cfg.Keys.Device; dev != "" {
		go func() {
			err := keycmd.ReadDevice(ctx, dev, rt.emitter)
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.For("keycmd").Warn("key device", "path", dev, "err", err)
			}
		}()
	}

	if err := tui.Run(ctx, rt.tuiDeps(a)); err != nil {
		rt.reporter.Notify(err, map[string]any{"where": "tui"})
		return writeErr(cmd, err)
	}
	return nil
}
