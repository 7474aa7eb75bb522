package cli

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

// Terminal provides terminal-aware progress output on stderr. Progress
// lines redraw in place when stderr is a terminal and are suppressed
// entirely when it is not, so piped and logged output stays clean.
type Terminal struct {
	IsTerminal bool
	UseColor   bool
	active     bool
}

// NewTerminal creates a new Terminal instance
func NewTerminal() *Terminal {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal, // Only use color in terminal
	}
}

// Progressf redraws the in-place progress line.
func (t *Terminal) Progressf(format string, args ...any) {
	if !t.IsTerminal {
		return
	}
	fmt.Fprintf(os.Stderr, "\r"+format, args...)
	t.active = true
}

// EndProgress finishes the progress line, if one is showing.
func (t *Terminal) EndProgress() {
	if t.active {
		fmt.Fprintln(os.Stderr)
		t.active = false
	}
}

// Warnf prints a warning line, clearing any progress line first.
func (t *Terminal) Warnf(format string, args ...any) {
	t.ClearLine()
	t.active = false
	fmt.Fprintln(os.Stderr, t.Color(ColorYellow, fmt.Sprintf(format, args...)))
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}

// Color wraps text in ANSI color codes (terminal only)
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// formatTotal renders a progress denominator, "?" while the query total
// is still unknown.
func formatTotal(total int) string {
	if total < 0 {
		return "?"
	}
	return strconv.Itoa(total)
}
