package snapshot

import (
	"rdsdash/internal/records"
)

// ExportVersion is the only snapshot shape this package produces and accepts.
// Any change to the JSON shape below requires bumping it.
const ExportVersion = 1

// DatetimeLayout formats Meta.ExportDatetime (UTC, millisecond precision).
const DatetimeLayout = "2006-01-02T15:04:05.000"

// Snapshot is the versioned, multiply-indexed export produced once per run.
//
// All views under Data are derived from the same record list and are
// mutually consistent (see Check). A Snapshot must not be modified after
// Assemble returns it; exporters only read it.
//
// Fields are declared in JSON key order so encoded output is sorted
// end-to-end.
type Snapshot struct {
	Data Data `json:"data"`
	Meta Meta `json:"meta"`
}

type Data struct {
	// Countries maps ISO3 codes to names for countries referenced by the
	// included operations.
	Countries map[string]string `json:"countries"`

	// Operations keeps reference-list order.
	Operations     []records.Operation          `json:"operations"`
	OperationsByID map[string]records.Operation `json:"operations_by_id"`

	// ResultsByLayer is layer_id -> operation_id -> result.
	ResultsByLayer map[string]map[string]records.Result `json:"results_by_layer"`

	// ResultsByOperation is operation_id -> layer_id -> result.
	ResultsByOperation map[string]map[string]records.Result `json:"results_by_operation"`

	// ResultsByResult holds every Result kind as a key; lists keep record order.
	ResultsByResult map[records.Result][]ResultRef `json:"results_by_result"`

	SummaryStatistics SummaryStatistics `json:"summary_statistics"`

	// UngroupedResults is 1:1 with the collected records, in collection order.
	UngroupedResults []UngroupedResult `json:"ungrouped_results"`
}

type ResultRef struct {
	LayerID     string `json:"layer_id"`
	OperationID string `json:"operation_id"`
}

type UngroupedResult struct {
	LayerID     string         `json:"layer_id"`
	OperationID string         `json:"operation_id"`
	Result      records.Result `json:"result"`
}

type SummaryStatistics struct {
	// AggregatedLayerResultsByOperation is operation_id -> category -> worst result.
	AggregatedLayerResultsByOperation map[string]map[string]records.Result `json:"aggregated_layer_results_by_operation"`

	TotalsByResult            map[records.Result]int            `json:"totals_by_result"`
	TotalsByResultByOperation map[string]map[records.Result]int `json:"totals_by_result_by_operation"`
}

type Meta struct {
	AppVersion     string        `json:"app_version"`
	DisplayLabels  DisplayLabels `json:"display_labels"`
	ExportDatetime string        `json:"export_datetime"`
	ExportVersion  int           `json:"export_version"`
}

type DisplayLabels struct {
	LayerAggregationCategories map[string]string         `json:"layer_aggregation_categories"`
	ResultTypes                map[records.Result]string `json:"result_types"`
}

// ResultLabel returns the display label for r, falling back to the code.
func (s *Snapshot) ResultLabel(r records.Result) string {
	if l, ok := s.Meta.DisplayLabels.ResultTypes[r]; ok && l != "" {
		return l
	}
	return string(r)
}

// CategoryLabel returns the display label for a category code, falling back
// to the code.
func (s *Snapshot) CategoryLabel(code string) string {
	if l, ok := s.Meta.DisplayLabels.LayerAggregationCategories[code]; ok && l != "" {
		return l
	}
	return code
}

// Len is the number of records the snapshot was built from.
func (s *Snapshot) Len() int {
	return len(s.Data.UngroupedResults)
}
