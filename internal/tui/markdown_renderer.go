package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minMarkdownWrap = 24

// markdownRenderer renders task descriptions as terminal markdown, rebuilding
// the glamour renderer whenever the wrap width changes.
type markdownRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer
}

// render converts markdown into ANSI-styled text wrapped to width, falling
// back to the raw source when glamour fails.
func (r *markdownRenderer) render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}

	if width < minMarkdownWrap {
		width = minMarkdownWrap
	}
	if r.renderer == nil || r.wrap != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return source
		}
		r.renderer = renderer
		r.wrap = width
	}

	rendered, err := r.renderer.Render(source)
	if err != nil {
		return source
	}
	return strings.TrimRight(rendered, "\n")
}
