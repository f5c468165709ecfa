package records

// RawRecord is one (operation, layer) verdict as produced by the collector.
//
// The collector emits a record for every known layer of an operation, using
// ResultNotEvaluated when no validation artifact exists.
type RawRecord struct {
	OperationID string `json:"operation_id"`
	LayerID     string `json:"layer_id"`
	Result      Result `json:"result"`
}

// Operation is a country-level rolling data scramble effort.
type Operation struct {
	AffectedCountryISO3 string `json:"affected_country_iso3"`
	AffectedCountryName string `json:"affected_country_name"`
	ID                  string `json:"id"`
	Name                string `json:"name"`
}

// NewRecord is a small constructor used by collectors and tests.
func NewRecord(operationID, layerID string, result Result) RawRecord {
	return RawRecord{OperationID: operationID, LayerID: layerID, Result: result}
}
