package output

import (
	"testing"
	"time"

	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

var testTime = time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

// testSnapshot builds a two-operation snapshot covering every result kind.
func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Assemble(snapshot.Input{
		Records: []records.RawRecord{
			records.NewRecord("bgd", "mainmap-admn-ad1-py-s1-ocha", records.ResultPass),
			records.NewRecord("bgd", "mainmap-tran-rds-ln-s1-osm", records.ResultFail),
			records.NewRecord("bgd", "mainmap-tran-rrd-ln-s1-osm", records.ResultPassWithWarnings),
			records.NewRecord("moz", "mainmap-admn-ad1-py-s1-ocha", records.ResultNotEvaluated),
			records.NewRecord("moz", "mainmap-stle-stl-pt-s0-allmaps", records.ResultError),
		},
		Operations: []records.Operation{
			{ID: "bgd", Name: "Bangladesh RDS", AffectedCountryISO3: "BGD", AffectedCountryName: "Bangladesh"},
			{ID: "moz", Name: "Mozambique RDS", AffectedCountryISO3: "MOZ", AffectedCountryName: "Mozambique"},
		},
		Countries:   map[string]string{"BGD": "Bangladesh", "MOZ": "Mozambique"},
		AppVersion:  "1.2.3",
		GeneratedAt: testTime,
	})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	return s
}

func unsupportedSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	s := testSnapshot(t)
	s.Meta.ExportVersion = snapshot.ExportVersion + 1
	return s
}
