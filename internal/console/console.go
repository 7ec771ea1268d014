// Package console renders streamed responses on a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/hpkotak/lexbud/internal/provider"
	"github.com/hpkotak/lexbud/internal/sections"
)

// Printer is a provider.Sink that writes to a terminal. In live mode new
// text is written as it arrives; otherwise only the final result is shown.
type Printer struct {
	Out    io.Writer
	ErrOut io.Writer
	Live   bool

	printed int
	failed  bool
}

// NewPrinter returns a printer that is live when out is a terminal.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, ErrOut: errOut, Live: IsTerminal(out)}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Update writes the part of snapshot not yet printed. Snapshots only grow,
// so the cursor is never echoed.
func (p *Printer) Update(snapshot string) {
	if !p.Live {
		return
	}
	text := strings.TrimSuffix(snapshot, provider.Cursor)
	if len(text) <= p.printed {
		return
	}
	_, _ = io.WriteString(p.Out, text[p.printed:])
	p.printed = len(text)
}

// Fail reports the stream error on ErrOut.
func (p *Printer) Fail(message string) {
	p.failed = true
	if p.printed > 0 {
		_, _ = fmt.Fprintln(p.Out)
	}
	_, _ = fmt.Fprintln(p.ErrOut, message)
}

// Failed reports whether Fail was called.
func (p *Printer) Failed() bool {
	return p.failed
}

// Finish prints what live mode has not shown yet. A nil result prints nothing.
func (p *Printer) Finish(r *provider.Result, layout sections.Layout) {
	if r == nil {
		return
	}
	if p.Live {
		if p.printed > 0 {
			_, _ = fmt.Fprintln(p.Out)
		}
		return
	}
	if r.Structured() {
		PrintSections(p.Out, r.Sections, layout)
		return
	}
	_, _ = fmt.Fprintln(p.Out, strings.TrimRight(r.Text, "\n"))
}

// PrintSections writes each present section under its title, in layout
// order.
func PrintSections(w io.Writer, result sections.Result, layout sections.Layout) {
	first := true
	for _, key := range layout.Keys() {
		body, ok := result[key]
		if !ok {
			continue
		}
		if !first {
			_, _ = fmt.Fprintln(w)
		}
		first = false

		title := sections.Titles[key]
		if title == "" {
			title = key
		}
		_, _ = fmt.Fprintf(w, "== %s ==\n", title)
		if body != "" {
			_, _ = fmt.Fprintln(w, body)
		}
	}
}
