package snapshot

import (
	"fmt"

	"rdsdash/internal/records"
)

// DefaultCategoryLabels are the display names for the layer categories of
// the MapAction data naming convention.
func DefaultCategoryLabels() map[string]string {
	return map[string]string{
		"admn":  "Admin",
		"carto": "Cartographic",
		"elev":  "Elevation",
		"phys":  "Physical features",
		"stle":  "Settlements",
		"tran":  "Transport",
	}
}

func DefaultResultLabels() map[records.Result]string {
	return map[records.Result]string{
		records.ResultError:            "Error",
		records.ResultFail:             "Fail",
		records.ResultNotEvaluated:     "Not Evaluated",
		records.ResultPass:             "Pass",
		records.ResultPassWithWarnings: "Warning",
	}
}

func copyCategoryLabels(in map[string]string) map[string]string {
	if in == nil {
		return DefaultCategoryLabels()
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyResultLabels(in map[records.Result]string) (map[records.Result]string, error) {
	if in == nil {
		return DefaultResultLabels(), nil
	}
	out := make(map[records.Result]string, len(in))
	for k, v := range in {
		if !k.Valid() {
			return nil, fmt.Errorf("result label: %w: %q", ErrInvalidResult, k)
		}
		out[k] = v
	}
	return out, nil
}
