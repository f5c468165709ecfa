package output

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rdsdash/internal/snapshot"
)

// SheetsAPI is the part of a spreadsheet service the sheets sink needs.
// Sheets are addressed by spreadsheet key and sheet title.
type SheetsAPI interface {
	SheetTitles(ctx context.Context, key string) ([]string, error)
	AddSheet(ctx context.Context, key, title string) error
	ClearSheet(ctx context.Context, key, title string) error
	UpdateValues(ctx context.Context, key, title string, values [][]string) error
}

// SheetsOptions names the spreadsheet and the sheets written to it.
type SheetsOptions struct {
	Key          string
	SummarySheet string
	DetailSheet  string
	// DailySheet adds a copy of the detail table to "output-YYYY-MM-DD",
	// dated by the export time.
	DailySheet bool
}

// SheetsSink publishes the summary and detail tables to a spreadsheet.
// Missing sheets are created; existing ones are cleared before writing.
type SheetsSink struct {
	api    SheetsAPI
	opts   SheetsOptions
	logger *zap.Logger
}

func NewSheetsSink(api SheetsAPI, opts SheetsOptions, logger *zap.Logger) (*SheetsSink, error) {
	if api == nil {
		return nil, fmt.Errorf("sheets client must not be nil")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("spreadsheet key required")
	}
	if opts.SummarySheet == "" || opts.DetailSheet == "" {
		return nil, fmt.Errorf("summary and detail sheet names required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsSink{api: api, opts: opts, logger: logger}, nil
}

type sheetWrite struct {
	title string
	table Table
}

// DailySheetName returns the dated sheet title for s.
func DailySheetName(s *snapshot.Snapshot) string {
	date := s.Meta.ExportDatetime
	if len(date) >= len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}
	return "output-" + date
}

func (s *SheetsSink) Write(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snapshot.Supported(snap); err != nil {
		return err
	}

	detail := DetailTable(snap)
	writes := []sheetWrite{
		{title: s.opts.SummarySheet, table: SummaryTable(snap)},
		{title: s.opts.DetailSheet, table: detail},
	}
	if s.opts.DailySheet {
		writes = append(writes, sheetWrite{title: DailySheetName(snap), table: detail})
	}

	titles, err := s.api.SheetTitles(ctx, s.opts.Key)
	if err != nil {
		return fmt.Errorf("list sheets: %w", err)
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	for _, w := range writes {
		if existing[w.title] {
			if err := s.api.ClearSheet(ctx, s.opts.Key, w.title); err != nil {
				return fmt.Errorf("clear sheet %q: %w", w.title, err)
			}
		} else {
			if err := s.api.AddSheet(ctx, s.opts.Key, w.title); err != nil {
				return fmt.Errorf("add sheet %q: %w", w.title, err)
			}
			existing[w.title] = true
		}
		values := w.table.Values()
		if err := s.api.UpdateValues(ctx, s.opts.Key, w.title, values); err != nil {
			return fmt.Errorf("write sheet %q: %w", w.title, err)
		}
		s.logger.Debug("sheet written",
			zap.String("sheet", w.title),
			zap.Int("rows", len(values)),
		)
	}
	return nil
}

func (s *SheetsSink) Close() error {
	return nil
}

// sheetRange returns an A1 range covering the whole of the titled sheet.
func sheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// sheetOrigin returns the A1 reference of the top-left cell.
func sheetOrigin(title string) string {
	return sheetRange(title) + "!A1"
}
