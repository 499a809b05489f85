package models

import "time"

// ReportRow is one item's activity within a report window. StockAtEnd is the
// item's unfiltered stock at query time, not a period-bounded figure.
type ReportRow struct {
	Name       string  `json:"name"`
	Bought     float64 `json:"bought"`
	Sold       float64 `json:"sold"`
	Revenue    float64 `json:"revenue"`
	Cost       float64 `json:"cost"`
	Profit     float64 `json:"profit"`
	StockAtEnd float64 `json:"stockAtEnd"`
}

// ReportTotals aggregates the per-item rows of a period report.
type ReportTotals struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalCost         float64 `json:"totalCost"`
	TotalProfit       float64 `json:"totalProfit"`
	ItemsWithActivity int     `json:"itemsWithActivity"`
}

// ReportPeriod describes the window a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// PeriodReport is the full aggregation for an inclusive date interval.
type PeriodReport struct {
	Period ReportPeriod `json:"period"`
	Items  []ReportRow  `json:"items"`
	Totals ReportTotals `json:"totals"`
}

// Summary is the whole-portfolio lifetime picture.
type Summary struct {
	ItemCount int          `json:"itemCount"`
	Totals    ReportTotals `json:"totals"`
}

// LogEntry is a single movement flattened out of its item for the daily log.
type LogEntry struct {
	ItemName  string          `json:"name"`
	Kind      TransactionKind `json:"kind"`
	Quantity  float64         `json:"quantity"`
	UnitCost  float64         `json:"unitCost"`
	UnitPrice float64         `json:"unitPrice"`
	Total     float64         `json:"total"`
	Date      time.Time       `json:"date"`
}
