package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall, so split panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		// Bound StringWidth on pathological lines.
		if width > 0 && len(ln) > 8192 {
			ln = cutWithEllipsis(ln, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			ln = cutWithEllipsis(ln, width)
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func cutWithEllipsis(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case width == 1:
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

// overlayCenter draws fg centered on top of bg. bg is assumed to be normalized
// to width x height.
func overlayCenter(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	fgW := 0
	for _, ln := range fgLines {
		if w := xansi.StringWidth(ln); w > fgW {
			fgW = w
		}
	}
	if fgW > width {
		fgW = width
	}
	if len(fgLines) > height {
		fgLines = fgLines[:height]
	}

	x := (width - fgW) / 2
	y := (height - len(fgLines)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	for i, ln := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		base := bgLines[row]
		left := xansi.Cut(base, 0, x)
		right := xansi.Cut(base, x+fgW, width)
		bgLines[row] = left + normalizePane(ln, fgW, 1) + right
	}
	return strings.Join(bgLines, "\n")
}
