package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

// ReportSink renders a Markdown summary of the export.
type ReportSink struct {
	path string
	mu   sync.Mutex
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	return &ReportSink{path: path}, nil
}

func (s *ReportSink) Write(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snapshot.Supported(snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(RenderReport(snap)), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func (s *ReportSink) Close() error {
	return nil
}

// RenderReport returns the Markdown report for snap.
func RenderReport(snap *snapshot.Snapshot) string {
	stats := computeOperationStats(snap)
	totals := snap.Data.SummaryStatistics.TotalsByResult
	label := snap.ResultLabel

	var b strings.Builder
	b.WriteString("# Rolling Data Scramble Dashboard Report\n\n")
	b.WriteString(fmt.Sprintf("Exported %s UTC by rdsdash %s (export version %d).\n\n", snap.Meta.ExportDatetime, snap.Meta.AppVersion, snap.Meta.ExportVersion))

	// --- Brief ---
	b.WriteString("### Brief\n\n")
	b.WriteString(fmt.Sprintf("- **%d operations**, %d layers evaluated.\n", len(snap.Data.Operations), snap.Len()))
	failingOps := 0
	for _, st := range stats {
		if st.Counts[records.ResultFail] > 0 || st.Counts[records.ResultError] > 0 {
			failingOps++
		}
	}
	if n := totals[records.ResultFail]; n > 0 {
		b.WriteString(fmt.Sprintf("- **%d layers %s**: no usable dataset was found.\n", n, strings.ToLower(label(records.ResultFail))))
	}
	if n := totals[records.ResultError]; n > 0 {
		b.WriteString(fmt.Sprintf("- **%d layers %s**: MapChef reported a problem this dashboard does not recognise.\n", n, strings.ToLower(label(records.ResultError))))
	}
	if failingOps > 0 {
		b.WriteString(fmt.Sprintf("- %d of %d operations have failing or erroring layers.\n", failingOps, len(stats)))
	}
	if n := totals[records.ResultNotEvaluated]; n > 0 {
		b.WriteString(fmt.Sprintf("- %d layers are not evaluated yet (no MapChef output).\n", n))
	}
	if totals[records.ResultFail] == 0 && totals[records.ResultError] == 0 {
		b.WriteString("- No failing layers.\n")
	}
	b.WriteString("\n")

	// --- Totals ---
	b.WriteString("## Totals\n\n")
	b.WriteString("| Result | Layers |\n")
	b.WriteString("| --- | ---: |\n")
	for _, r := range records.AllResults() {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", mdCell(label(r)), totals[r]))
	}
	b.WriteString("\n")

	// --- Per-operation status ---
	b.WriteString("## Per-operation status\n\n")
	if len(stats) == 0 {
		b.WriteString("No operations.\n\n")
	} else {
		header := []string{"Operation", "Country"}
		align := []string{"---", "---"}
		for _, r := range records.AllResults() {
			header = append(header, mdCell(label(r)))
			align = append(align, "---:")
		}
		header = append(header, "Failing categories")
		align = append(align, "---")
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		b.WriteString("| " + strings.Join(align, " | ") + " |\n")
		for _, st := range stats {
			row := []string{mdCell(st.Operation.ID + " " + st.Operation.Name), mdCell(st.Operation.AffectedCountryName)}
			for _, r := range records.AllResults() {
				row = append(row, fmt.Sprintf("%d", st.Counts[r]))
			}
			row = append(row, mdCell(strings.Join(st.WorstCategories(snap), ", ")))
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	// --- Needs attention ---
	if top := topOperations(stats, 5); len(top) > 0 {
		b.WriteString("### Needs attention first\n\n")
		for _, st := range top {
			b.WriteString(fmt.Sprintf("- **%s** (%s): %d %s, %d %s, %d %s\n",
				st.Operation.ID, st.Operation.AffectedCountryName,
				st.Counts[records.ResultError], label(records.ResultError),
				st.Counts[records.ResultFail], label(records.ResultFail),
				st.Counts[records.ResultPassWithWarnings], label(records.ResultPassWithWarnings)))
		}
		b.WriteString("\n")
	}

	// --- Category matrix ---
	b.WriteString("## Categories\n\n")
	summary := SummaryTable(snap)
	if len(summary.Header) == 0 {
		b.WriteString("No operations.\n\n")
	} else {
		header := []string{"Category"}
		align := []string{"---"}
		for _, h := range summary.Header {
			header = append(header, mdCell(h))
			align = append(align, "---")
		}
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		b.WriteString("| " + strings.Join(align, " | ") + " |\n")
		for _, r := range summary.Rows {
			cells := []string{mdCell(r.Label)}
			for _, c := range r.Cells {
				cells = append(cells, mdCell(c))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		b.WriteString("\n")
	}

	// --- Failing layers per operation ---
	b.WriteString("## Failing layers\n\n")
	anyFailing := false
	for _, st := range stats {
		errs := st.ByResult[records.ResultError]
		fails := st.ByResult[records.ResultFail]
		if len(errs) == 0 && len(fails) == 0 {
			continue
		}
		anyFailing = true
		b.WriteString(fmt.Sprintf("### %s (%s)\n", st.Operation.ID, st.Operation.AffectedCountryName))
		for _, l := range errs {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", l, label(records.ResultError)))
		}
		for _, l := range fails {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", l, label(records.ResultFail)))
		}
		b.WriteString("\n")
	}
	if !anyFailing {
		b.WriteString("- None\n\n")
	}

	// --- Warnings across operations ---
	b.WriteString("## Warnings\n\n")
	byLayer, layers := layersAcrossOperations(snap, records.ResultPassWithWarnings)
	if len(layers) == 0 {
		b.WriteString("- None\n\n")
	} else {
		for _, l := range layers {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", l, formatList("operations", byLayer[l], 5)))
		}
		b.WriteString("\n")
	}

	// --- Not evaluated ---
	b.WriteString("## Not evaluated\n\n")
	anyPending := false
	for _, st := range stats {
		if pending := st.ByResult[records.ResultNotEvaluated]; len(pending) > 0 {
			anyPending = true
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", st.Operation.ID, formatList("layers", pending, 3)))
		}
	}
	if !anyPending {
		b.WriteString("- None\n")
	}

	return b.String()
}
