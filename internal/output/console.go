package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

type ConsoleSink struct {
	writer io.Writer
	format string // "text", "json"
	mu     sync.Mutex
	colors map[records.Result]*color.Color
	bold   *color.Color
}

// NewConsoleSink prints to w (stdout when nil). noColor disables ANSI
// colours regardless of the terminal.
func NewConsoleSink(w io.Writer, format string, noColor bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
		colors: map[records.Result]*color.Color{
			records.ResultPass:             color.New(color.FgGreen),
			records.ResultPassWithWarnings: color.New(color.FgYellow),
			records.ResultFail:             color.New(color.FgRed),
			records.ResultError:            color.New(color.FgMagenta, color.Bold),
			records.ResultNotEvaluated:     color.New(color.Faint),
		},
		bold: color.New(color.Bold),
	}
	if noColor {
		for _, c := range s.colors {
			c.DisableColor()
		}
		s.bold.DisableColor()
	}
	return s
}

func (s *ConsoleSink) Write(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snapshot.Supported(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if err := snapshot.Encode(s.writer, snap); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		if err := s.writeText(snap); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(snap *snapshot.Snapshot) error {
	var b strings.Builder
	stats := snap.Data.SummaryStatistics

	s.bold.Fprintf(&b, "RDS dashboard export %s (app %s, export v%d)\n\n", snap.Meta.ExportDatetime, snap.Meta.AppVersion, snap.Meta.ExportVersion)

	// Totals across all operations.
	results := records.AllResults()
	var parts []string
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s %d", s.colorize(r, snap.ResultLabel(r)), stats.TotalsByResult[r]))
	}
	fmt.Fprintf(&b, "%d layers: %s\n\n", snap.Len(), strings.Join(parts, ", "))

	// Per-operation totals.
	header := []string{"Operation", "Country"}
	for _, r := range results {
		header = append(header, snap.ResultLabel(r))
	}
	var rows [][]string
	for _, op := range snap.Data.Operations {
		row := []string{op.ID, op.AffectedCountryName}
		for _, r := range results {
			row = append(row, strconv.Itoa(stats.TotalsByResultByOperation[op.ID][r]))
		}
		rows = append(rows, row)
	}
	s.renderTable(&b, header, rows, nil)
	b.WriteString("\n")

	// Category matrix with coloured verdicts.
	summary := SummaryTable(snap)
	labelToResult := make(map[string]records.Result, len(results))
	for _, r := range results {
		labelToResult[snap.ResultLabel(r)] = r
	}
	matrix := make([][]string, 0, len(summary.Rows))
	for _, r := range summary.Rows {
		matrix = append(matrix, append([]string{r.Label}, r.Cells...))
	}
	s.renderTable(&b, append([]string{"Category"}, summary.Header...), matrix, func(cell string) string {
		if r, ok := labelToResult[cell]; ok {
			return s.colorize(r, cell)
		}
		return cell
	})

	_, err := io.WriteString(s.writer, b.String())
	return err
}

func (s *ConsoleSink) colorize(r records.Result, text string) string {
	if c, ok := s.colors[r]; ok {
		return c.Sprint(text)
	}
	return text
}

// renderTable pads on the plain text so colour escapes do not skew column
// widths; paint, when set, decorates body cells after padding.
func (s *ConsoleSink) renderTable(b *strings.Builder, header []string, rows [][]string, paint func(string) string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeRow := func(cells []string, decorate func(int, string) string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			pad := ""
			if i < len(cells)-1 {
				pad = strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
			}
			b.WriteString(decorate(i, cell))
			b.WriteString(pad)
		}
		b.WriteString("\n")
	}

	writeRow(header, func(_ int, cell string) string { return s.bold.Sprint(cell) })
	for _, row := range rows {
		writeRow(row, func(i int, cell string) string {
			if paint == nil || i == 0 {
				return cell
			}
			return paint(cell)
		})
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != "text" && s.format != "json" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
