package tui

import (
	"fmt"
	"sort"
	"strings"

	"relay-cli/internal/locale"
	"relay-cli/internal/routes"
)

// placeholder is the terminal rendition of a screen: its localized title and a
// short description. Room content is out of scope for the navigation shell.
type placeholder struct {
	view  string
	title string
	blurb string
}

func (p placeholder) Title() string { return p.title }

func (p placeholder) View(width, height int) string {
	md := "# " + p.title + "\n\n" + p.blurb
	return normalizePane(renderMarkdown(md, width), width, height)
}

// Screens returns the factory used to build the route table for the TUI.
func Screens(tr *locale.Translator) routes.Factory {
	return func(view string) routes.Screen {
		return placeholder{
			view:  view,
			title: tr.Text(view),
			blurb: "`" + view + "`",
		}
	}
}

// paramsMarkdown renders route params as a definition list, sorted by key.
func paramsMarkdown(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- **%s**: %s\n", k, params[k])
	}
	return b.String()
}
