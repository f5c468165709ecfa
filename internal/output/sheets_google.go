package output

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheets implements SheetsAPI with the Sheets v4 API, authenticated
// as a service account.
type GoogleSheets struct {
	svc    *sheets.Service
	logger *zap.Logger
}

// NewGoogleSheets reads a service account key file and returns a client
// scoped to scopes.
func NewGoogleSheets(ctx context.Context, credentialPath string, scopes []string, logger *zap.Logger) (*GoogleSheets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, fmt.Errorf("read service credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.Debug("sheets client ready", zap.String("account", jwt.Email))
	return &GoogleSheets{svc: svc, logger: logger}, nil
}

func (g *GoogleSheets) SheetTitles(ctx context.Context, key string) ([]string, error) {
	ss, err := g.svc.Spreadsheets.Get(key).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleSheets) AddSheet(ctx context.Context, key, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(key, req).Context(ctx).Do()
	return err
}

func (g *GoogleSheets) ClearSheet(ctx context.Context, key, title string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(key, sheetRange(title), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *GoogleSheets) UpdateValues(ctx context.Context, key, title string, values [][]string) error {
	rows := make([][]interface{}, len(values))
	for i, row := range values {
		rows[i] = make([]interface{}, len(row))
		for j, v := range row {
			rows[i][j] = v
		}
	}
	vr := &sheets.ValueRange{Range: sheetOrigin(title), Values: rows}
	resp, err := g.svc.Spreadsheets.Values.Update(key, sheetOrigin(title), vr).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}
	g.logger.Debug("sheet values updated",
		zap.String("range", resp.UpdatedRange),
		zap.Int64("cells", resp.UpdatedCells),
	)
	return nil
}
