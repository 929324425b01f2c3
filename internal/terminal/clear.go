// Package terminal reports terminal geometry and erases answered prompts.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const fallbackWidth = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal on f, or 80 when unknown.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackWidth
}

// Rows returns how many rows n characters wrap to at the given width.
// Empty text still occupies one row.
func Rows(n, width int) int {
	if width <= 0 {
		width = fallbackWidth
	}
	if n <= 0 {
		return 1
	}
	return (n + width - 1) / width
}

// ClearLines erases n rows ending at the cursor, leaving the cursor at the
// start of the topmost erased row.
func ClearLines(w io.Writer, n int) {
	if n <= 0 {
		return
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("\r\x1b[2K")
		if i < n-1 {
			b.WriteString("\x1b[1A")
		}
	}
	fmt.Fprint(w, b.String())
}

// ClearPreviousLines erases a prompt of textLength characters (prompt plus
// answer) from stdout, including the empty row Enter moved the cursor to.
func ClearPreviousLines(textLength int) {
	ClearLines(os.Stdout, Rows(textLength, Width(os.Stdout))+1)
}
