package output

import (
	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

// Event is one line of NDJSON output.
//
// The stream starts with a single "export.meta" event carrying the snapshot
// meta block, followed by one "layer.result" event per ungrouped result in
// collection order.
type Event struct {
	Type string         `json:"type"`
	Meta *snapshot.Meta `json:"meta,omitempty"`

	OperationID         string         `json:"operation_id,omitempty"`
	LayerID             string         `json:"layer_id,omitempty"`
	Category            string         `json:"category,omitempty"`
	Result              records.Result `json:"result,omitempty"`
	AffectedCountryISO3 string         `json:"affected_country_iso3,omitempty"`
}

const (
	EventMeta   = "export.meta"
	EventResult = "layer.result"
)

// eventsFromSnapshot flattens s into NDJSON events.
func eventsFromSnapshot(s *snapshot.Snapshot) []Event {
	meta := s.Meta
	events := make([]Event, 0, s.Len()+1)
	events = append(events, Event{Type: EventMeta, Meta: &meta})
	for _, u := range s.Data.UngroupedResults {
		category, _ := records.LayerCategory(u.LayerID)
		events = append(events, Event{
			Type:                EventResult,
			OperationID:         u.OperationID,
			LayerID:             u.LayerID,
			Category:            category,
			Result:              u.Result,
			AffectedCountryISO3: s.Data.OperationsByID[u.OperationID].AffectedCountryISO3,
		})
	}
	return events
}
