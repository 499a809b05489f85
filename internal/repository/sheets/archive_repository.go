package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/kayoni-co/stocklog/internal/config"
	"github.com/kayoni-co/stocklog/internal/domain/models"
)

const (
	archiveRange = "Reports!A:F"
	dateLayout   = "2006-01-02"
)

// Archive receives generated report summaries for long-term, human-readable
// storage. Appends are best-effort; callers log and move on.
type Archive interface {
	AppendReportSummary(ctx context.Context, report models.PeriodReport) error
}

// GoogleSheetArchive implements Archive using the official Google Sheets API.
type GoogleSheetArchive struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetArchive builds a Google Sheets backed archive instance.
func NewGoogleSheetArchive(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetArchive{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendReportSummary appends one row per generated report: the window, its
// label and the portfolio totals.
func (a *GoogleSheetArchive) AppendReportSummary(ctx context.Context, report models.PeriodReport) error {
	row := []interface{}{
		time.Now().UTC().Format(time.RFC3339),
		report.Period.Label,
		fmt.Sprintf("%s - %s", report.Period.Start.Format(dateLayout), report.Period.End.Format(dateLayout)),
		report.Totals.TotalRevenue,
		report.Totals.TotalCost,
		report.Totals.TotalProfit,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	call := a.service.Spreadsheets.Values.Append(a.spreadsheetID, archiveRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row into range %s: %w", archiveRange, err)
	}

	a.logger.Debug("report summary archived", zap.String("label", report.Period.Label))
	return nil
}
