package snapshot

import (
	"fmt"

	"rdsdash/internal/records"
)

type indexes struct {
	byLayer     map[string]map[string]records.Result
	byOperation map[string]map[string]records.Result
	byResult    map[records.Result][]ResultRef
	ungrouped   []UngroupedResult
}

type pairKey struct {
	operationID string
	layerID     string
}

// buildIndexes re-expresses recs as the four record views in a single pass.
// It fails on the first invalid result, unknown operation or duplicate pair.
func buildIndexes(recs []records.RawRecord, known map[string]records.Operation) (*indexes, error) {
	idx := &indexes{
		byLayer:     make(map[string]map[string]records.Result),
		byOperation: make(map[string]map[string]records.Result),
		byResult:    make(map[records.Result][]ResultRef, len(records.AllResults())),
		ungrouped:   make([]UngroupedResult, 0, len(recs)),
	}
	for _, r := range records.AllResults() {
		idx.byResult[r] = []ResultRef{}
	}

	seen := make(map[pairKey]int, len(recs))
	for i, rec := range recs {
		if !rec.Result.Valid() {
			return nil, fmt.Errorf("record %d (operation %q layer %q): %w: %q", i, rec.OperationID, rec.LayerID, ErrInvalidResult, rec.Result)
		}
		if _, ok := known[rec.OperationID]; !ok {
			return nil, &UnknownOperationError{OperationID: rec.OperationID, LayerID: rec.LayerID}
		}
		k := pairKey{operationID: rec.OperationID, layerID: rec.LayerID}
		if first, dup := seen[k]; dup {
			return nil, &DuplicateRecordError{OperationID: rec.OperationID, LayerID: rec.LayerID, First: first, Second: i}
		}
		seen[k] = i

		if idx.byLayer[rec.LayerID] == nil {
			idx.byLayer[rec.LayerID] = make(map[string]records.Result)
		}
		idx.byLayer[rec.LayerID][rec.OperationID] = rec.Result

		if idx.byOperation[rec.OperationID] == nil {
			idx.byOperation[rec.OperationID] = make(map[string]records.Result)
		}
		idx.byOperation[rec.OperationID][rec.LayerID] = rec.Result

		idx.byResult[rec.Result] = append(idx.byResult[rec.Result], ResultRef{LayerID: rec.LayerID, OperationID: rec.OperationID})

		idx.ungrouped = append(idx.ungrouped, UngroupedResult{LayerID: rec.LayerID, OperationID: rec.OperationID, Result: rec.Result})
	}

	return idx, nil
}
