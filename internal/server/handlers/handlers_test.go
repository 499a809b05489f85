package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayoni-co/stocklog/internal/domain/models"
	"github.com/kayoni-co/stocklog/internal/server/handlers"
	"github.com/kayoni-co/stocklog/internal/server/router"
	"github.com/kayoni-co/stocklog/internal/service/reporting"
)

type fakeLedger struct {
	recordErr error
	createErr error
	listErr   error
	items     []models.Item
	lastMove  models.Movement
}

func (f *fakeLedger) RecordMovement(ctx context.Context, m models.Movement) (*models.Item, *models.Transaction, error) {
	if f.recordErr != nil {
		return nil, nil, f.recordErr
	}
	f.lastMove = m
	tx := m.Transaction(time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC))
	item := &models.Item{
		Name:         m.Name,
		NameKey:      models.NormalizeName(m.Name),
		Transactions: []models.Transaction{tx},
	}
	return item, &tx, nil
}

func (f *fakeLedger) CreateItem(ctx context.Context, name string) (*models.Item, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Item{Name: name, NameKey: models.NormalizeName(name)}, nil
}

func (f *fakeLedger) ListItems(ctx context.Context) ([]models.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

type fakeReports struct {
	report  *models.PeriodReport
	logs    []models.LogEntry
	summary *models.Summary
	err     error
}

func (f *fakeReports) Summary(ctx context.Context) (*models.Summary, error) {
	return f.summary, f.err
}

func (f *fakeReports) PeriodReport(ctx context.Context, start, end time.Time) (*models.PeriodReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeReports) MonthlyReport(ctx context.Context, year, month int) (*models.PeriodReport, error) {
	if month < 1 || month > 12 {
		return nil, models.ErrValidation
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeReports) YearlyReport(ctx context.Context, year int) (*models.PeriodReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeReports) DailyLog(ctx context.Context, day time.Time) ([]models.LogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.logs, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.ExportEvent
}

func (f *fakeNotifier) Emit(event models.ExportEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) all() []models.ExportEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ExportEvent(nil), f.events...)
}

func newTestRouter(ledger *fakeLedger, reports *fakeReports, notifier *fakeNotifier) http.Handler {
	items := handlers.NewItemsHandler(ledger, nil)
	rep := handlers.NewReportsHandler(reports, notifier, time.UTC, nil)
	return router.New(items, rep, nil)
}

func doRequest(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRecordMovementEndpoint(t *testing.T) {
	ledger := &fakeLedger{}
	h := newTestRouter(ledger, &fakeReports{}, &fakeNotifier{})

	w := doRequest(h, http.MethodPost, "/api/items",
		`{"name":"Paper","type":"purchase","quantity":10,"unitCost":5}`, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.KindPurchase, ledger.lastMove.Kind)
	assert.Equal(t, 10.0, ledger.lastMove.Quantity)

	var resp struct {
		Transaction models.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp.Transaction.Total)
}

func TestRecordMovementEndpointRejectsBadPayload(t *testing.T) {
	h := newTestRouter(&fakeLedger{}, &fakeReports{}, &fakeNotifier{})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"type":"purchase","quantity":10}`},
		{"missing quantity", `{"name":"Paper","type":"purchase"}`},
		{"unknown kind", `{"name":"Paper","type":"transfer","quantity":1}`},
		{"not json", `quantity=10`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/api/items", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRecordMovementEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"oversell", &models.InsufficientStockError{Name: "Paper", Requested: 10, Available: 6}, http.StatusBadRequest},
		{"sale on unknown item", models.ErrInvalidMovement, http.StatusBadRequest},
		{"validation", models.ErrValidation, http.StatusBadRequest},
		{"duplicate", models.ErrDuplicateItem, http.StatusConflict},
		{"storage", models.ErrStorage, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeLedger{recordErr: tt.err}, &fakeReports{}, &fakeNotifier{})
			w := doRequest(h, http.MethodPost, "/api/items",
				`{"name":"Paper","type":"sale","quantity":10,"unitPrice":8}`, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRecordMovementEndpointOversellMessage(t *testing.T) {
	err := &models.InsufficientStockError{Name: "Paper", Requested: 10, Available: 6}
	h := newTestRouter(&fakeLedger{recordErr: err}, &fakeReports{}, &fakeNotifier{})

	w := doRequest(h, http.MethodPost, "/api/items",
		`{"name":"Paper","type":"sale","quantity":10,"unitPrice":8}`, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Available: 6")
}

func TestListItemsEndpointEmbedsDerivedMetrics(t *testing.T) {
	day := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{items: []models.Item{{
		Name:    "Paper",
		NameKey: "paper",
		Transactions: []models.Transaction{
			{Kind: models.KindPurchase, Quantity: 10, UnitCost: 5, Total: 50, Date: day},
			{Kind: models.KindSale, Quantity: 4, UnitPrice: 8, Total: 32, Date: day},
		},
	}}}
	h := newTestRouter(ledger, &fakeReports{}, &fakeNotifier{})

	w := doRequest(h, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []models.ItemView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, 6.0, views[0].CurrentStock)
	assert.Equal(t, -18.0, views[0].Profit)
}

func TestMonthlyReportEndpointEmitsExportEvent(t *testing.T) {
	notifier := &fakeNotifier{}
	reports := &fakeReports{report: &models.PeriodReport{
		Period: models.ReportPeriod{Label: "January 2026"},
		Items:  []models.ReportRow{},
	}}
	h := newTestRouter(&fakeLedger{}, reports, notifier)

	w := doRequest(h, http.MethodGet, "/api/reports/monthly?year=2026&month=1", "", map[string]string{
		"X-Actor-ID": "admin-1",
		"User-Agent": "stocklog-test",
	})

	require.Equal(t, http.StatusOK, w.Code)

	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.ExportJSON, events[0].Kind)
	assert.Equal(t, models.FormatMonthly, events[0].Format)
	assert.Equal(t, "admin-1", events[0].ActorID)
	assert.Equal(t, "stocklog-test", events[0].UserAgent)
	assert.Equal(t, 2026, events[0].Params["year"])
	assert.Equal(t, 1, events[0].Params["month"])
}

func TestMonthlyReportEndpointValidation(t *testing.T) {
	notifier := &fakeNotifier{}
	h := newTestRouter(&fakeLedger{}, &fakeReports{}, notifier)

	w := doRequest(h, http.MethodGet, "/api/reports/monthly?year=2026&month=13", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/api/reports/monthly?year=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, notifier.all(), "failed reports must not be audited")
}

func TestDailyLogEndpoint(t *testing.T) {
	day := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	reports := &fakeReports{logs: []models.LogEntry{
		{ItemName: "Paper", Kind: models.KindPurchase, Quantity: 10, Total: 50, Date: day},
	}}
	notifier := &fakeNotifier{}
	h := newTestRouter(&fakeLedger{}, reports, notifier)

	w := doRequest(h, http.MethodGet, "/api/reports/daily?date=2026-01-15", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var logs []models.LogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)

	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, "2026-01-15", events[0].Params["date"])
}

func TestDailyLogEndpointRequiresDate(t *testing.T) {
	h := newTestRouter(&fakeLedger{}, &fakeReports{}, &fakeNotifier{})

	w := doRequest(h, http.MethodGet, "/api/reports/daily", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodGet, "/api/reports/daily?date=15-01-2026", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterItemEndpoint(t *testing.T) {
	h := newTestRouter(&fakeLedger{}, &fakeReports{}, &fakeNotifier{})
	w := doRequest(h, http.MethodPost, "/api/items/register", `{"name":"Toner"}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	h = newTestRouter(&fakeLedger{createErr: models.ErrDuplicateItem}, &fakeReports{}, &fakeNotifier{})
	w = doRequest(h, http.MethodPost, "/api/items/register", `{"name":"Toner"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

type staticItemSource struct {
	items []models.Item
}

func (s *staticItemSource) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.items, nil
}

// The period and daily endpoints must interpret their date parameters in the
// configured locale, so that the same nominal window reports the same
// activity as the locale-based monthly granularity.
func TestReportEndpointsAgreeOnLocaleWindows(t *testing.T) {
	nairobi, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	// 22:00 UTC on Jan 31 is already Feb 1 in Nairobi (UTC+3).
	late := time.Date(2026, time.January, 31, 22, 0, 0, 0, time.UTC)
	source := &staticItemSource{items: []models.Item{{
		Name:    "Paper",
		NameKey: "paper",
		Transactions: []models.Transaction{
			{Kind: models.KindPurchase, Quantity: 5, UnitCost: 2, Total: 10, Date: late},
		},
	}}}

	reportingSvc := reporting.NewService(source, nairobi, nil)
	rep := handlers.NewReportsHandler(reportingSvc, &fakeNotifier{}, nairobi, nil)
	h := router.New(handlers.NewItemsHandler(&fakeLedger{}, nil), rep, nil)

	type reportResp struct {
		Items []models.ReportRow `json:"items"`
	}

	w := doRequest(h, http.MethodGet, "/api/reports/monthly?year=2026&month=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var monthly reportResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &monthly))
	require.Len(t, monthly.Items, 1)
	assert.Equal(t, 5.0, monthly.Items[0].Bought)

	w = doRequest(h, http.MethodGet, "/api/reports/period?start=2026-02-01&end=2026-02-28", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var period reportResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &period))
	require.Len(t, period.Items, 1)
	assert.Equal(t, monthly.Items[0].Bought, period.Items[0].Bought,
		"the same nominal February window must report the same activity")

	w = doRequest(h, http.MethodGet, "/api/reports/daily?date=2026-02-01", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.LogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1, "the movement belongs to Feb 1 in the configured locale")

	w = doRequest(h, http.MethodGet, "/api/reports/daily?date=2026-01-31", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Empty(t, logs)
}

func TestHealthz(t *testing.T) {
	h := newTestRouter(&fakeLedger{}, &fakeReports{}, &fakeNotifier{})
	w := doRequest(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
