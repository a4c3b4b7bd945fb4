package present

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"fileconv/internal/formats"
	"fileconv/internal/logging"
	"fileconv/internal/session"
)

// ConsoleOptions configure a Console.
type ConsoleOptions struct {
	Out   io.Writer
	Color bool
	// Interactive draws an animated progress bar. Otherwise progress is
	// printed as sampled percentage lines.
	Interactive bool
	// Resolve turns a download reference into the URL shown to the user.
	Resolve func(ref string) string
}

// Console writes session events to a terminal.
type Console struct {
	out         io.Writer
	palette     palette
	interactive bool
	resolve     func(string) string

	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
}

// NewConsole builds a Console. A nil Out writes to stdout.
func NewConsole(opts ConsoleOptions) *Console {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	resolve := opts.Resolve
	if resolve == nil {
		resolve = func(ref string) string { return ref }
	}
	return &Console{
		out:         out,
		palette:     newPalette(opts.Color),
		interactive: opts.Interactive,
		resolve:     resolve,
		sampler:     logging.NewProgressSampler(25),
	}
}

// Transition prints the status line for the state the session entered.
func (c *Console) Transition(prev session.State, snap session.Snapshot) {
	if prev == session.Converting && snap.State != session.Converting {
		c.finishBar()
	}
	switch snap.State {
	case session.Idle:
		c.line(c.palette.muted, "Ready for a file.")
	case session.FileLoaded:
		c.printLoaded(snap)
	case session.FormatSelected:
		if prev == session.Converting {
			return
		}
		c.line(c.palette.info, "Target format: %s", selectedLabel(snap))
	case session.Converting:
		c.startBar(snap)
	case session.Downloadable:
		if snap.Result != nil {
			c.line(c.palette.success, "%s", ResultLine(*snap.Result, c.resolve))
		}
	}
}

// Progress advances the progress display.
func (c *Console) Progress(percent int) {
	if c.interactive && c.bar != nil {
		_ = c.bar.Set(percent)
		if percent >= 100 {
			c.finishBar()
		}
		return
	}
	if c.sampler.ShouldLog("", percent) {
		c.line(c.palette.muted, "Converting... %d%%", percent)
	}
}

// Notice prints a levelled message.
func (c *Console) Notice(n session.Notice) {
	msg := strings.TrimSpace(n.Message)
	if msg == "" {
		return
	}
	c.finishBar()
	col := c.palette.forLevel(n.Level)
	text := fmt.Sprintf("[%s] %s", levelLabel(n.Level), msg)
	if !n.Blocking {
		c.line(col, "%s", text)
		return
	}
	// Blocking notices are boxed.
	rule := strings.Repeat("=", utf8.RuneCountInString(text))
	c.line(col, "%s", rule)
	c.line(col, "%s", text)
	c.line(col, "%s", rule)
}

func (c *Console) printLoaded(snap session.Snapshot) {
	header := fmt.Sprintf("Loaded %s (%s)", snap.Handle, formats.DisplayCategory(snap.Category))
	if size, ok := fileSize(snap.Path); ok {
		header += ", " + humanize.Bytes(uint64(size))
	}
	c.line(c.palette.heading, "%s", header)
	for _, opt := range snap.Options {
		if opt.Code == "" {
			continue
		}
		fmt.Fprintf(c.out, "  %-6s %s\n", opt.Code, opt.Label)
	}
}

func (c *Console) startBar(snap session.Snapshot) {
	c.sampler.Reset()
	if !c.interactive {
		c.line(c.palette.info, "Converting %s to %s...", snap.Handle, selectedLabel(snap))
		return
	}
	c.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Converting "+snap.Handle),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (c *Console) finishBar() {
	if c.bar == nil {
		return
	}
	bar := c.bar
	c.bar = nil
	_ = bar.Finish()
	fmt.Fprintln(c.out)
}

func (c *Console) line(col *color.Color, format string, args ...any) {
	fmt.Fprintln(c.out, col.Sprintf(format, args...))
}

// ResultLine renders the download entry for a successful conversion.
func ResultLine(result session.Result, resolve func(string) string) string {
	ref := result.DownloadURL
	if resolve != nil {
		ref = resolve(ref)
	}
	return fmt.Sprintf("%s -> %s", result.Label(), ref)
}

func selectedLabel(snap session.Snapshot) string {
	for _, opt := range snap.Options {
		if opt.Code != "" && opt.Code == snap.Selected {
			return opt.Label
		}
	}
	return strings.ToUpper(snap.Selected)
}

func fileSize(path string) (int64, bool) {
	if strings.TrimSpace(path) == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}
