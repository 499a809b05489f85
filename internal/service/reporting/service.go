package reporting

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

const dateLayout = "2006-01-02"

// lastInstant is the final represented millisecond of a day.
const lastInstant = 999 * time.Millisecond

// ItemSource supplies the ledger snapshot reports are computed from.
type ItemSource interface {
	ListItems(ctx context.Context) ([]models.Item, error)
}

// Service turns a ledger snapshot into period reports and daily logs. It
// never stores results; every report is recomputed from the transaction
// sequences so derived figures cannot go stale.
type Service struct {
	items  ItemSource
	loc    *time.Location
	logger *zap.Logger
}

// NewService wires a new reporting service instance. All report boundaries
// are computed in the supplied location.
func NewService(items ItemSource, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{items: items, loc: loc, logger: logger}
}

// PeriodReport aggregates movements inside [start, end], both bounds
// inclusive. Every item contributes a row; items without activity in the
// window show zeroes with their live stock figure.
func (s *Service) PeriodReport(ctx context.Context, start, end time.Time) (*models.PeriodReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", models.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end precedes start", models.ErrValidation)
	}

	label := fmt.Sprintf("%s - %s", start.In(s.loc).Format(dateLayout), end.In(s.loc).Format(dateLayout))
	return s.aggregate(ctx, start, end, label)
}

// MonthlyReport covers one calendar month, from its first instant to
// 23:59:59.999 of its last day (day zero of the following month).
func (s *Service) MonthlyReport(ctx context.Context, year, month int) (*models.PeriodReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", models.ErrValidation)
	}
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", models.ErrValidation)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, int(lastInstant), s.loc)

	return s.aggregate(ctx, start, end, start.Format("January 2006"))
}

// YearlyReport covers Jan 1 00:00:00.000 through Dec 31 23:59:59.999.
func (s *Service) YearlyReport(ctx context.Context, year int) (*models.PeriodReport, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", models.ErrValidation)
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	end := time.Date(year, time.December, 31, 23, 59, 59, int(lastInstant), s.loc)

	return s.aggregate(ctx, start, end, strconv.Itoa(year))
}

// DailyLog flattens every movement of one calendar day across all items into
// a single chronological list. Ties keep storage order.
func (s *Service) DailyLog(ctx context.Context, day time.Time) ([]models.LogEntry, error) {
	if day.IsZero() {
		return nil, fmt.Errorf("%w: date is required", models.ErrValidation)
	}

	y, m, d := day.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	end := time.Date(y, m, d, 23, 59, 59, int(lastInstant), s.loc)

	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	logs := make([]models.LogEntry, 0)
	for _, item := range items {
		for _, tx := range models.FilterByDate(item.Transactions, start, end) {
			logs = append(logs, models.LogEntry{
				ItemName:  item.Name,
				Kind:      tx.Kind,
				Quantity:  tx.Quantity,
				UnitCost:  tx.UnitCost,
				UnitPrice: tx.UnitPrice,
				Total:     tx.Total,
				Date:      tx.Date,
			})
		}
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})

	s.logger.Debug("daily log extracted",
		zap.String("date", start.Format(dateLayout)),
		zap.Int("entries", len(logs)))
	return logs, nil
}

// Summary reports the lifetime portfolio totals and item count.
func (s *Service) Summary(ctx context.Context) (*models.Summary, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{ItemCount: len(items)}
	for _, item := range items {
		revenue := item.AmountSold()
		cost := item.AmountBought()
		summary.Totals.TotalRevenue += revenue
		summary.Totals.TotalCost += cost
		summary.Totals.TotalProfit += revenue - cost
		if item.QuantityBought() > 0 || item.QuantitySold() > 0 {
			summary.Totals.ItemsWithActivity++
		}
	}
	return summary, nil
}

func (s *Service) aggregate(ctx context.Context, start, end time.Time, label string) (*models.PeriodReport, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.PeriodReport{
		Period: models.ReportPeriod{Start: start, End: end, Label: label},
		Items:  make([]models.ReportRow, 0, len(items)),
	}

	for _, item := range items {
		txs := models.FilterByDate(item.Transactions, start, end)

		row := models.ReportRow{
			Name:    item.Name,
			Bought:  models.QuantityBought(txs),
			Sold:    models.QuantitySold(txs),
			Revenue: models.AmountSold(txs),
			Cost:    models.AmountBought(txs),
			// Live stock, not the period-bounded figure.
			StockAtEnd: item.CurrentStock(),
		}
		row.Profit = row.Revenue - row.Cost

		report.Items = append(report.Items, row)

		report.Totals.TotalRevenue += row.Revenue
		report.Totals.TotalCost += row.Cost
		report.Totals.TotalProfit += row.Profit
		if row.Bought > 0 || row.Sold > 0 {
			report.Totals.ItemsWithActivity++
		}
	}

	s.logger.Debug("period report built",
		zap.String("label", label),
		zap.Int("items", len(report.Items)),
		zap.Int("active", report.Totals.ItemsWithActivity))
	return report, nil
}
