package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"relay-cli/internal/locale"
	"relay-cli/internal/routes"
)

type routeRow struct {
	Name   string `json:"name" yaml:"name"`
	View   string `json:"view" yaml:"view"`
	Path   string `json:"path" yaml:"path"`
	Title  string `json:"title" yaml:"title"`
	Header bool   `json:"header" yaml:"header"`
}

func newRoutesCmd(app *App) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, tr, err := routeTable(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if tree {
				return writeOut(cmd, app, map[string]any{"data": routeTree(table)})
			}
			var rows []routeRow
			table.Walk(func(e routes.Entry) {
				rows = append(rows, newRouteRow(e, tr))
			})
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "Nest routes by container")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show where a route is declared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, tr, err := routeTable(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := strings.TrimSpace(args[0])
			var rows []routeRow
			table.Walk(func(e routes.Entry) {
				if e.Node.Name == name {
					rows = append(rows, newRouteRow(e, tr))
				}
			})
			if len(rows) == 0 {
				return writeErr(cmd, &routes.UnknownRouteError{Name: name, Suggestion: routes.Suggest(name, table.Names())})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"name":      name,
				"locations": rows,
			}})
		},
	})
	return cmd
}

// routeTable builds the table with titles in the configured locale. Screens
// are never resolved by the listing commands.
func routeTable(app *App) (*routes.Table, *locale.Translator, error) {
	tr, err := locale.New(app.cfg.Locale)
	if err != nil {
		return nil, nil, err
	}
	return routes.NewTable(func(string) routes.Screen { return nil }), tr, nil
}

func newRouteRow(e routes.Entry, tr *locale.Translator) routeRow {
	return routeRow{
		Name:   e.Node.Name,
		View:   e.Node.View,
		Path:   strings.Join(e.Path, "/"),
		Title:  tr.Title(e.Node),
		Header: !e.Node.Header.Hidden,
	}
}

// routeTree nests route names under their container path. Leaves are lists of
// route names under the "routes" key.
func routeTree(t *routes.Table) map[string]any {
	root := map[string]any{}
	t.Walk(func(e routes.Entry) {
		cur := root
		for _, p := range e.Path {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
		names, _ := cur["routes"].([]string)
		cur["routes"] = append(names, e.Node.Name)
	})
	return root
}
