package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for the terminal, wrapped at width columns
// (100 when width is not positive). Raw markdown is printed if rendering
// fails.
func RenderMarkdown(md string, width int) {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		Logger.Debug("Markdown renderer unavailable", "error", err)
		fmt.Fprintln(os.Stdout, md)
		return
	}

	out, err := renderer.Render(md)
	if err != nil {
		Logger.Debug("Markdown render failed", "error", err)
		fmt.Fprintln(os.Stdout, md)
		return
	}

	fmt.Fprint(os.Stdout, out)
}
