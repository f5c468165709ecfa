package snapshot

import (
	"fmt"
	"strings"
	"time"

	"rdsdash/internal/records"
)

// Input is everything Assemble needs. Reference tables are read, never
// retained: Assemble copies what it keeps.
type Input struct {
	Records    []records.RawRecord
	Operations []records.Operation

	// Countries maps ISO3 codes to country names.
	Countries map[string]string

	// CategoryLabels and ResultLabels become Meta.DisplayLabels.
	// nil selects DefaultCategoryLabels / DefaultResultLabels.
	CategoryLabels map[string]string
	ResultLabels   map[records.Result]string

	AppVersion  string
	GeneratedAt time.Time

	// Version is the export version the caller expects. Zero means
	// ExportVersion; any other value must equal it.
	Version int
}

// Assemble builds the export snapshot for one run.
//
// It either returns a fully populated, internally consistent snapshot or an
// error; it never returns a partial snapshot. Assemble performs no I/O.
func Assemble(in Input) (*Snapshot, error) {
	if in.Version != 0 && in.Version != ExportVersion {
		return nil, fmt.Errorf("%w: requested %d, assembler implements %d", ErrUnsupportedVersion, in.Version, ExportVersion)
	}

	operations, byID, countries, err := indexOperations(in.Operations, in.Countries)
	if err != nil {
		return nil, err
	}

	categoryLabels := copyCategoryLabels(in.CategoryLabels)
	resultLabels, err := copyResultLabels(in.ResultLabels)
	if err != nil {
		return nil, err
	}

	idx, err := buildIndexes(in.Records, byID)
	if err != nil {
		return nil, err
	}

	aggregated, err := aggregateCategories(in.Records)
	if err != nil {
		return nil, err
	}

	totals, totalsByOperation := countResults(in.Records)

	return &Snapshot{
		Data: Data{
			Countries:          countries,
			Operations:         operations,
			OperationsByID:     byID,
			ResultsByLayer:     idx.byLayer,
			ResultsByOperation: idx.byOperation,
			ResultsByResult:    idx.byResult,
			SummaryStatistics: SummaryStatistics{
				AggregatedLayerResultsByOperation: aggregated,
				TotalsByResult:                    totals,
				TotalsByResultByOperation:         totalsByOperation,
			},
			UngroupedResults: idx.ungrouped,
		},
		Meta: Meta{
			AppVersion: in.AppVersion,
			DisplayLabels: DisplayLabels{
				LayerAggregationCategories: categoryLabels,
				ResultTypes:                resultLabels,
			},
			ExportDatetime: in.GeneratedAt.UTC().Format(DatetimeLayout),
			ExportVersion:  ExportVersion,
		},
	}, nil
}

// indexOperations validates the operations reference list and derives the
// ordered list, the by-id map, and the countries they reference.
func indexOperations(ops []records.Operation, countryNames map[string]string) ([]records.Operation, map[string]records.Operation, map[string]string, error) {
	list := make([]records.Operation, 0, len(ops))
	byID := make(map[string]records.Operation, len(ops))
	countries := make(map[string]string)

	for i, op := range ops {
		if strings.TrimSpace(op.ID) == "" {
			return nil, nil, nil, fmt.Errorf("%w: operation %d has an empty id", ErrInvalidOperation, i)
		}
		if _, dup := byID[op.ID]; dup {
			return nil, nil, nil, fmt.Errorf("%w: duplicate operation id %q", ErrInvalidOperation, op.ID)
		}
		if strings.TrimSpace(op.AffectedCountryISO3) == "" {
			return nil, nil, nil, fmt.Errorf("%w: operation %q has no affected country", ErrInvalidOperation, op.ID)
		}

		name := countryNames[op.AffectedCountryISO3]
		if name == "" {
			name = op.AffectedCountryName
		}
		if name == "" {
			return nil, nil, nil, fmt.Errorf("%w: operation %q: no name for country %q", ErrInvalidOperation, op.ID, op.AffectedCountryISO3)
		}
		if op.AffectedCountryName == "" {
			op.AffectedCountryName = name
		}

		list = append(list, op)
		byID[op.ID] = op
		countries[op.AffectedCountryISO3] = name
	}

	return list, byID, countries, nil
}
