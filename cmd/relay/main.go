package main

import (
	"os"
	"strings"

	"relay-cli/internal/cli"
	"relay-cli/internal/deeplink"
)

func isLink(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, deeplink.AppScheme) || strings.HasPrefix(s, deeplink.WebLinkHost)
}

// rewriteDirectLinkArgs turns `relay <link>` into `relay open <link>`, the way a
// desktop URL handler invokes the binary.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first, so the first positional
// token is searched for, not just argv[1].
func rewriteDirectLinkArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config-dir": true,
		"--db":         true,
		"--log-level":  true,
		"--format":     true,
		"--url":        true,
	}

	insertOpen := func(at int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:at]...)
		out = append(out, "open")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Keep "open" ahead of the terminator so cobra still sees it.
			if i+1 < len(argv) && isLink(argv[i+1]) {
				return insertOpen(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isLink(a) {
			return insertOpen(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectLinkArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
