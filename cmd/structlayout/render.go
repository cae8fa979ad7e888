package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/generate"
)

// renderer prints diagnostics, in color when writing to a terminal.
type renderer struct {
	w     io.Writer
	color bool

	posStyle    lipgloss.Style
	kindStyle   lipgloss.Style
	targetStyle lipgloss.Style
	okStyle     lipgloss.Style
	failStyle   lipgloss.Style
}

func newRenderer(f *os.File) *renderer {
	r := lipgloss.NewRenderer(f)
	return &renderer{
		w:     f,
		color: term.IsTerminal(int(f.Fd())),

		posStyle: r.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		kindStyle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")),
		targetStyle: r.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")),
		okStyle: r.NewStyle().
			Foreground(lipgloss.Color("#90EE90")),
		failStyle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r *renderer) diagnostic(d *diag.Diagnostic) {
	if !r.color {
		fmt.Fprintln(r.w, d.Error())
		return
	}

	line := ""
	if d.Pos.IsValid() {
		line += r.style(r.posStyle, d.Pos.String()+":") + " "
	}
	line += r.style(r.kindStyle, d.Kind.String())
	if d.Type != "" {
		target := d.Type
		if d.Field != "" {
			target += "." + d.Field
		}
		line += " in " + r.style(r.targetStyle, target)
	}
	line += ": " + d.Message
	fmt.Fprintln(r.w, line)
}

func (r *renderer) summary(res *generate.Result) {
	layouts := 0
	for _, f := range res.Files {
		layouts += len(f.Layouts)
	}

	failed := res.Failed()
	if failed == 0 {
		fmt.Fprintln(r.w, r.style(r.okStyle,
			fmt.Sprintf("ok: %d layouts in %d files", layouts, len(res.Files))))
		return
	}
	fmt.Fprintln(r.w, r.style(r.failStyle,
		fmt.Sprintf("FAIL: %d of %d files rejected", failed, len(res.Files))))
}
