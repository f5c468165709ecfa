package snapshot

import (
	"errors"
	"fmt"
	"sort"

	"rdsdash/internal/records"
)

// Check verifies the cross-view invariants of a snapshot and returns every
// violation found, joined. It is used by tests and by `rdsdash check` on
// exported files.
func Check(s *Snapshot) error {
	if err := Supported(s); err != nil {
		return err
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	d := &s.Data
	n := len(d.UngroupedResults)

	// Operations and operations_by_id describe the same set.
	if len(d.Operations) != len(d.OperationsByID) {
		fail("operations has %d entries, operations_by_id has %d", len(d.Operations), len(d.OperationsByID))
	}
	for _, op := range d.Operations {
		if got, ok := d.OperationsByID[op.ID]; !ok || got != op {
			fail("operation %q differs between operations and operations_by_id", op.ID)
		}
		if _, ok := d.Countries[op.AffectedCountryISO3]; !ok {
			fail("country %q of operation %q missing from countries", op.AffectedCountryISO3, op.ID)
		}
	}
	referenced := make(map[string]struct{}, len(d.Operations))
	for _, op := range d.Operations {
		referenced[op.AffectedCountryISO3] = struct{}{}
	}
	for iso3 := range d.Countries {
		if _, ok := referenced[iso3]; !ok {
			fail("country %q is not referenced by any operation", iso3)
		}
	}

	// Completeness: every ungrouped pair appears exactly once in both maps.
	seen := make(map[pairKey]struct{}, n)
	perOperation := make(map[string]int)
	for i, u := range d.UngroupedResults {
		k := pairKey{operationID: u.OperationID, layerID: u.LayerID}
		if _, dup := seen[k]; dup {
			fail("ungrouped_results[%d]: duplicate pair (%s, %s)", i, u.OperationID, u.LayerID)
		}
		seen[k] = struct{}{}
		perOperation[u.OperationID]++

		if _, ok := d.OperationsByID[u.OperationID]; !ok {
			fail("ungrouped_results[%d]: unknown operation %q", i, u.OperationID)
		}
		if got := d.ResultsByLayer[u.LayerID][u.OperationID]; got != u.Result {
			fail("results_by_layer[%s][%s] = %q, want %q", u.LayerID, u.OperationID, got, u.Result)
		}
		if got := d.ResultsByOperation[u.OperationID][u.LayerID]; got != u.Result {
			fail("results_by_operation[%s][%s] = %q, want %q", u.OperationID, u.LayerID, got, u.Result)
		}
	}
	if c := countNested(d.ResultsByLayer); c != n {
		fail("results_by_layer holds %d pairs, want %d", c, n)
	}
	if c := countNested(d.ResultsByOperation); c != n {
		fail("results_by_operation holds %d pairs, want %d", c, n)
	}

	// Partition completeness.
	partitioned := 0
	for _, r := range records.AllResults() {
		refs, ok := d.ResultsByResult[r]
		if !ok {
			fail("results_by_result is missing key %s", r)
		}
		for _, ref := range refs {
			if got := d.ResultsByOperation[ref.OperationID][ref.LayerID]; got != r {
				fail("results_by_result[%s] lists (%s, %s) whose result is %q", r, ref.OperationID, ref.LayerID, got)
			}
		}
		partitioned += len(refs)
	}
	if len(d.ResultsByResult) != len(records.AllResults()) {
		fail("results_by_result has %d keys, want %d", len(d.ResultsByResult), len(records.AllResults()))
	}
	if partitioned != n {
		fail("results_by_result partitions %d records, want %d", partitioned, n)
	}

	// Total conservation.
	stats := &d.SummaryStatistics
	if missing := missingResultKeys(stats.TotalsByResult); len(missing) > 0 {
		fail("totals_by_result is missing keys %v", missing)
	}
	if sum := sumCounts(stats.TotalsByResult); sum != n {
		fail("totals_by_result sums to %d, want %d", sum, n)
	}
	for _, r := range records.AllResults() {
		if got, want := stats.TotalsByResult[r], len(d.ResultsByResult[r]); got != want {
			fail("totals_by_result[%s] = %d, want %d", r, got, want)
		}
	}
	for op, counts := range stats.TotalsByResultByOperation {
		if missing := missingResultKeys(counts); len(missing) > 0 {
			fail("totals_by_result_by_operation[%s] is missing keys %v", op, missing)
		}
		if sum := sumCounts(counts); sum != perOperation[op] {
			fail("totals_by_result_by_operation[%s] sums to %d, want %d", op, sum, perOperation[op])
		}
	}
	for op := range perOperation {
		if _, ok := stats.TotalsByResultByOperation[op]; !ok {
			fail("totals_by_result_by_operation is missing operation %q", op)
		}
	}

	// Aggregation matches a recomputation from the ungrouped view.
	recs := make([]records.RawRecord, 0, n)
	for _, u := range d.UngroupedResults {
		recs = append(recs, records.NewRecord(u.OperationID, u.LayerID, u.Result))
	}
	want, err := aggregateCategories(recs)
	if err != nil {
		fail("aggregated_layer_results_by_operation: %v", err)
	} else {
		checkAggregated(stats.AggregatedLayerResultsByOperation, want, fail)
	}

	return errors.Join(errs...)
}

func checkAggregated(got, want map[string]map[string]records.Result, fail func(string, ...any)) {
	ops := make([]string, 0, len(want))
	for op := range want {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		for cat, r := range want[op] {
			if got[op][cat] != r {
				fail("aggregated_layer_results_by_operation[%s][%s] = %q, want %q", op, cat, got[op][cat], r)
			}
		}
		if len(got[op]) != len(want[op]) {
			fail("aggregated_layer_results_by_operation[%s] has %d categories, want %d", op, len(got[op]), len(want[op]))
		}
	}
	if len(got) != len(want) {
		fail("aggregated_layer_results_by_operation has %d operations, want %d", len(got), len(want))
	}
}

func countNested(m map[string]map[string]records.Result) int {
	c := 0
	for _, inner := range m {
		c += len(inner)
	}
	return c
}

func sumCounts(m map[records.Result]int) int {
	sum := 0
	for _, v := range m {
		sum += v
	}
	return sum
}

func missingResultKeys(m map[records.Result]int) []records.Result {
	var missing []records.Result
	for _, r := range records.AllResults() {
		if _, ok := m[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
