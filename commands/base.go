package commands

import (
	"fmt"
	"io"

	"github.com/InimaJin/MyShell/core/config"
	"github.com/fatih/color"
)

var (
	ColorBoldRed = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	// Mode is one of config.ColorAlways, config.ColorAuto or config.ColorNever.
	Mode string
	// IsTerminal reports whether the output is a terminal, used in auto mode.
	IsTerminal func() bool
}

func (c *ColorPrinter) ShouldColor() bool {
	if c == nil {
		return false
	}

	switch {
	case c.Mode == config.ColorNever:
		return false
	case c.Mode == config.ColorAlways:
		return true
	default:
		return c.IsTerminal != nil && c.IsTerminal()
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		// fatih/color turns itself off when stdout isn't a terminal, which isn't
		// what ColorAlways asks for.
		color.EnableColor()
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// PrintError writes a failed line's error the way the loop reports it.
func (c *ColorPrinter) PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", c.Sprintf(ColorBoldRed, "Shell error:"), err)
}
