package present

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"fileconv/internal/formats"
	"fileconv/internal/history"
)

// Alignment controls column alignment in rendered tables.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable renders rows under headers with rounded borders. Short rows are
// padded with empty cells.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// FormatsTable lists the target formats offered for each category.
func FormatsTable(catalog *formats.Catalog, categories []string) string {
	var rows [][]string
	for _, category := range categories {
		for _, f := range catalog.List(category) {
			rows = append(rows, []string{formats.DisplayCategory(category), f.Code, f.Label})
		}
	}
	return RenderTable([]string{"Category", "Code", "Label"}, rows, nil)
}

// UploadsTable lists upload attempts.
func UploadsTable(uploads []*history.Upload, now time.Time) string {
	rows := make([][]string, 0, len(uploads))
	for _, u := range uploads {
		file := u.Handle
		if file == "" {
			file = filepath.Base(u.SourcePath)
		}
		size := ""
		if u.SizeBytes > 0 {
			size = humanize.Bytes(uint64(u.SizeBytes))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", u.ID),
			relativeTime(u.StartedAt, now),
			u.Source,
			file,
			size,
			formats.DisplayCategory(u.Category),
			outcomeCell(u.Outcome, u.ErrorMessage),
		})
	}
	return RenderTable(
		[]string{"ID", "When", "Source", "File", "Size", "Category", "Outcome"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	)
}

// ConversionsTable lists conversion attempts.
func ConversionsTable(conversions []*history.Conversion, now time.Time) string {
	rows := make([][]string, 0, len(conversions))
	for _, c := range conversions {
		target := c.TargetFormat
		if c.Compress {
			target += " (compressed)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ID),
			relativeTime(c.StartedAt, now),
			c.Handle,
			target,
			c.OutputFilename,
			outcomeCell(c.Outcome, c.ErrorMessage),
			formatDuration(c.Duration),
			c.DownloadedPath,
		})
	}
	return RenderTable(
		[]string{"ID", "When", "File", "Target", "Output", "Outcome", "Took", "Saved To"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	)
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func outcomeCell(outcome, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return outcome
	}
	return outcome + ": " + message
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
