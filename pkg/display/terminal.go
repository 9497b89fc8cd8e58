// Package display renders the reveal on a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"draftreveal/pkg/draft"
	"draftreveal/pkg/reveal"
)

const labelWidth = 6

var (
	welcomeColors  = text.Colors{text.FgHiGreen, text.Bold}
	revealColors   = text.Colors{text.FgGreen}
	earlyColors    = text.Colors{text.FgHiRed, text.Bold}
	lateColors     = text.Colors{text.FgHiYellow, text.Bold}
	completeColors = text.Colors{text.FgHiGreen, text.Bold}
)

// Terminal implements reveal.Presenter on a text stream. On a TTY the
// countdown redraws in place; otherwise each value is printed once.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	counting bool
}

// NewTerminal writes to out, colouring only when out is a terminal.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, colorize: ShouldColorize(out)}
}

// NewPlainTerminal writes to out without colour or cursor control.
func NewPlainTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) paint(c text.Colors, s string) string {
	if !t.colorize {
		return s
	}
	return c.Sprint(s)
}

// Welcome prints the reveal banner.
func (t *Terminal) Welcome() {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := "== Welcome to the Fantasy Draft Reveal! =="
	fmt.Fprintln(t.out, t.paint(welcomeColors, line))
	fmt.Fprintln(t.out, t.paint(welcomeColors, strings.Repeat("-", len(line))))
	fmt.Fprintln(t.out)
}

// Reveal prints one pick.
func (t *Terminal) Reveal(pick int, label, entrant string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endCountdownLocked()
	row := fmt.Sprintf("%-*s %s", labelWidth, label+":", entrant)
	fmt.Fprintln(t.out, t.paint(revealColors, row))
}

// Countdown shows value with the colour for cue.
func (t *Terminal) Countdown(value int, cue reveal.Cue) {
	t.mu.Lock()
	defer t.mu.Unlock()

	colors := earlyColors
	if cue == reveal.CueLate {
		colors = lateColors
	}

	if t.colorize {
		fmt.Fprintf(t.out, "\r%s\x1b[K", t.paint(colors, fmt.Sprintf("   %d", value)))
		t.counting = true
		return
	}
	if cue == reveal.CueEarly {
		fmt.Fprintf(t.out, "%d... ", value)
		t.counting = true
	}
}

// ClearCountdown removes the countdown from the screen.
func (t *Terminal) ClearCountdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endCountdownLocked()
}

func (t *Terminal) endCountdownLocked() {
	if !t.counting {
		return
	}
	if t.colorize {
		fmt.Fprint(t.out, "\r\x1b[K")
	} else {
		fmt.Fprintln(t.out)
	}
	t.counting = false
}

// Complete prints the closing banner and the full order.
func (t *Terminal) Complete(order draft.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.endCountdownLocked()
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.paint(completeColors, "Draft Order Complete!"))
	fmt.Fprintln(t.out, RenderOrder(order))
}

var _ reveal.Presenter = (*Terminal)(nil)
