package output

import (
	"fmt"
	"sort"
	"strings"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

// Score weights for ranking operations that need attention.
var resultWeight = map[records.Result]int{
	records.ResultError:            5,
	records.ResultFail:             3,
	records.ResultPassWithWarnings: 1,
}

type operationStats struct {
	Operation records.Operation
	Counts    map[records.Result]int
	// ByResult lists layer ids per result, sorted.
	ByResult map[records.Result][]string
}

func (o *operationStats) Score() int {
	score := 0
	for r, w := range resultWeight {
		score += o.Counts[r] * w
	}
	return score
}

// WorstCategories returns the labels of the categories whose aggregated
// verdict is FAIL or ERROR, most severe first.
func (o *operationStats) WorstCategories(s *snapshot.Snapshot) []string {
	cats := s.Data.SummaryStatistics.AggregatedLayerResultsByOperation[o.Operation.ID]
	var codes []string
	for code, r := range cats {
		if r == records.ResultFail || r == records.ResultError {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		si, sj := cats[codes[i]].Severity(), cats[codes[j]].Severity()
		if si != sj {
			return si > sj
		}
		return codes[i] < codes[j]
	})
	labels := make([]string, 0, len(codes))
	for _, c := range codes {
		labels = append(labels, s.CategoryLabel(c))
	}
	return labels
}

func computeOperationStats(s *snapshot.Snapshot) []*operationStats {
	out := make([]*operationStats, 0, len(s.Data.Operations))
	for _, op := range s.Data.Operations {
		st := &operationStats{
			Operation: op,
			Counts:    make(map[records.Result]int),
			ByResult:  make(map[records.Result][]string),
		}
		for r, n := range s.Data.SummaryStatistics.TotalsByResultByOperation[op.ID] {
			st.Counts[r] = n
		}
		for layer, r := range s.Data.ResultsByOperation[op.ID] {
			st.ByResult[r] = append(st.ByResult[r], layer)
		}
		for _, layers := range st.ByResult {
			sort.Strings(layers)
		}
		out = append(out, st)
	}
	return out
}

// topOperations ranks operations by score, then id, and returns at most n
// with a non-zero score.
func topOperations(stats []*operationStats, n int) []*operationStats {
	var all []*operationStats
	for _, st := range stats {
		if st.Score() > 0 {
			all = append(all, st)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		s1 := all[i].Score()
		s2 := all[j].Score()
		if s1 != s2 {
			return s1 > s2
		}
		return all[i].Operation.ID < all[j].Operation.ID
	})

	if len(all) > n {
		return all[:n]
	}
	return all
}

// layersAcrossOperations maps layer id to the operations where it has
// result r.
func layersAcrossOperations(s *snapshot.Snapshot, r records.Result) (map[string][]string, []string) {
	byLayer := make(map[string][]string)
	for _, ref := range s.Data.ResultsByResult[r] {
		byLayer[ref.LayerID] = append(byLayer[ref.LayerID], ref.OperationID)
	}
	layers := make([]string, 0, len(byLayer))
	for l, ops := range byLayer {
		sort.Strings(ops)
		layers = append(layers, l)
	}
	sort.Strings(layers)
	return byLayer, layers
}

func formatList(noun string, items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= max {
		return fmt.Sprintf("%d %s (%s)", len(items), noun, strings.Join(items, ", "))
	}
	return fmt.Sprintf("%d %s (%s, +%d more)", len(items), noun, strings.Join(items[:max], ", "), len(items)-max)
}

// mdCell escapes text for use inside a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
