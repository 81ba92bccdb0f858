// Package ui provides terminal styling and output helpers for the
// shirokuma CLI: color detection, a lipgloss table for list views, and
// a glamour renderer for item content.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Palette, kept small and reused across every rendered surface.
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "245", Dark: "244"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	ColorGood   = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
)

// IsTerminal reports whether stdout is connected to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR / CLICOLOR conventions, falling
// back to termenv's color-profile detection (which accounts for TERM,
// COLORTERM, and whether stdout is actually a TTY).
func ShouldUseColor() bool {
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if termenv.EnvNoColor() {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Width returns the terminal width, defaulting to 80 columns when it
// can't be determined (piped output, non-TTY).
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
