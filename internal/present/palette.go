package present

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"fileconv/internal/session"
)

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShouldColorize reports whether w is a terminal that accepts ANSI colours.
// NO_COLOR disables colour regardless of the terminal.
func ShouldColorize(w io.Writer) bool {
	return os.Getenv("NO_COLOR") == "" && IsTerminal(w)
}

type palette struct {
	info    *color.Color
	success *color.Color
	warn    *color.Color
	err     *color.Color
	heading *color.Color
	muted   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen, color.Bold),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		heading: color.New(color.FgCyan, color.Bold),
		muted:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.info, p.success, p.warn, p.err, p.heading, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) forLevel(level session.NoticeLevel) *color.Color {
	switch level {
	case session.NoticeSuccess:
		return p.success
	case session.NoticeWarn:
		return p.warn
	case session.NoticeError:
		return p.err
	default:
		return p.info
	}
}

func levelLabel(level session.NoticeLevel) string {
	switch level {
	case session.NoticeSuccess:
		return "OK"
	case session.NoticeWarn:
		return "WARN"
	case session.NoticeError:
		return "ERROR"
	default:
		return "INFO"
	}
}
