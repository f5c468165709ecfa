package snapshot

import (
	"rdsdash/internal/records"
)

// aggregateCategories reduces each operation's layers to one result per
// category, keeping the most severe (records.Worst). A category is only
// present when at least one layer of the operation belongs to it.
func aggregateCategories(recs []records.RawRecord) (map[string]map[string]records.Result, error) {
	out := make(map[string]map[string]records.Result)
	for _, rec := range recs {
		key, err := records.ParseLayerID(rec.LayerID)
		if err != nil {
			return nil, &LayerIDError{OperationID: rec.OperationID, LayerID: rec.LayerID, Err: err}
		}

		byCategory := out[rec.OperationID]
		if byCategory == nil {
			byCategory = make(map[string]records.Result)
			out[rec.OperationID] = byCategory
		}

		// Seed with the first member: starting from NOT_EVALUATED would turn
		// an all-PASS category into NOT_EVALUATED.
		if cur, ok := byCategory[key.Category]; ok {
			byCategory[key.Category] = records.Worst(cur, rec.Result)
		} else {
			byCategory[key.Category] = rec.Result
		}
	}
	return out, nil
}
