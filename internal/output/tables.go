package output

import (
	"sort"

	"rdsdash/internal/snapshot"
)

// Table is a labelled grid: Header names the columns after the row-label
// column; each row starts with its label.
type Table struct {
	Corner string
	Header []string
	Rows   []TableRow
}

type TableRow struct {
	Label string
	Cells []string
}

// Values returns the table as a rectangular grid with the header row first
// and the row labels in column zero.
func (t Table) Values() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string{t.Corner}, t.Header...))
	for _, r := range t.Rows {
		out = append(out, append([]string{r.Label}, r.Cells...))
	}
	return out
}

// countryColumns returns one column header per operation, in operation
// order, labelled with the affected country name.
func countryColumns(s *snapshot.Snapshot) ([]string, []string) {
	ids := make([]string, 0, len(s.Data.Operations))
	names := make([]string, 0, len(s.Data.Operations))
	for _, op := range s.Data.Operations {
		ids = append(ids, op.ID)
		names = append(names, op.AffectedCountryName)
	}
	return ids, names
}

// SummaryTable projects the category aggregation: one row per category
// (sorted by code, labelled), one column per operation, result labels in
// the cells. Categories an operation has no layers in are left blank.
func SummaryTable(s *snapshot.Snapshot) Table {
	ids, names := countryColumns(s)
	agg := s.Data.SummaryStatistics.AggregatedLayerResultsByOperation

	codes := make(map[string]struct{})
	for code := range s.Meta.DisplayLabels.LayerAggregationCategories {
		codes[code] = struct{}{}
	}
	for _, cats := range agg {
		for code := range cats {
			codes[code] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	t := Table{Header: names}
	for _, code := range sorted {
		row := TableRow{Label: s.CategoryLabel(code), Cells: make([]string, len(ids))}
		for i, id := range ids {
			if r, ok := agg[id][code]; ok {
				row.Cells[i] = s.ResultLabel(r)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DetailTable projects every layer: one row per layer id (sorted), one
// column per operation.
func DetailTable(s *snapshot.Snapshot) Table {
	ids, names := countryColumns(s)

	layers := make([]string, 0, len(s.Data.ResultsByLayer))
	for id := range s.Data.ResultsByLayer {
		layers = append(layers, id)
	}
	sort.Strings(layers)

	t := Table{Header: names}
	for _, layer := range layers {
		row := TableRow{Label: layer, Cells: make([]string, len(ids))}
		for i, id := range ids {
			if r, ok := s.Data.ResultsByLayer[layer][id]; ok {
				row.Cells[i] = s.ResultLabel(r)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
