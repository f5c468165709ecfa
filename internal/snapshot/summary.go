package snapshot

import (
	"rdsdash/internal/records"
)

// newResultCounts returns a count map with every Result kind set to zero.
func newResultCounts() map[records.Result]int {
	m := make(map[records.Result]int, len(records.AllResults()))
	for _, r := range records.AllResults() {
		m[r] = 0
	}
	return m
}

// countResults computes totals across all records and per operation.
// Only operations with at least one record appear in byOperation.
func countResults(recs []records.RawRecord) (totals map[records.Result]int, byOperation map[string]map[records.Result]int) {
	totals = newResultCounts()
	byOperation = make(map[string]map[records.Result]int)
	for _, rec := range recs {
		totals[rec.Result]++
		counts := byOperation[rec.OperationID]
		if counts == nil {
			counts = newResultCounts()
			byOperation[rec.OperationID] = counts
		}
		counts[rec.Result]++
	}
	return totals, byOperation
}
