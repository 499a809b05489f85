package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

const dateLayout = "2006-01-02"

// ReportingService describes the report operations the HTTP layer exposes.
type ReportingService interface {
	Summary(ctx context.Context) (*models.Summary, error)
	PeriodReport(ctx context.Context, start, end time.Time) (*models.PeriodReport, error)
	MonthlyReport(ctx context.Context, year, month int) (*models.PeriodReport, error)
	YearlyReport(ctx context.Context, year int) (*models.PeriodReport, error)
	DailyLog(ctx context.Context, day time.Time) ([]models.LogEntry, error)
}

// Notifier receives best-effort export events after a report succeeds.
type Notifier interface {
	Emit(event models.ExportEvent)
}

// ReportsHandler handles report HTTP requests. Date parameters are parsed in
// the same location the reporting service computes its boundaries in, so the
// period endpoint and the named granularities agree on window membership.
type ReportsHandler struct {
	reports  ReportingService
	notifier Notifier
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(reports ReportingService, notifier Notifier, loc *time.Location, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{reports: reports, notifier: notifier, loc: loc, logger: logger, now: time.Now}
}

// Summary returns the lifetime portfolio picture.
func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
	h.notify(c, models.FormatSummary, nil)
}

// Monthly returns the report for ?year=&month=, defaulting to the current month.
func (h *ReportsHandler) Monthly(c *gin.Context) {
	now := h.now()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
	h.notify(c, models.FormatMonthly, map[string]any{"year": year, "month": month})
}

// Yearly returns the report for ?year=, defaulting to the current year.
func (h *ReportsHandler) Yearly(c *gin.Context) {
	year, err := intQuery(c, "year", h.now().Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}

	report, err := h.reports.YearlyReport(c.Request.Context(), year)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
	h.notify(c, models.FormatYearly, map[string]any{"year": year})
}

// Period returns the report for an arbitrary ?start=&end= date window.
func (h *ReportsHandler) Period(c *gin.Context) {
	start, err := time.ParseInLocation(dateLayout, c.Query("start"), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
		return
	}
	endDay, err := time.ParseInLocation(dateLayout, c.Query("end"), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
		return
	}
	y, m, d := endDay.Date()
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), h.loc)

	report, err := h.reports.PeriodReport(c.Request.Context(), start, end)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
	h.notify(c, models.FormatPeriod, map[string]any{
		"start": c.Query("start"),
		"end":   c.Query("end"),
	})
}

// Daily returns the flattened movement log for ?date=YYYY-MM-DD.
func (h *ReportsHandler) Daily(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query param required"})
		return
	}

	day, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	logs, err := h.reports.DailyLog(c.Request.Context(), day)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
	h.notify(c, models.FormatDaily, map[string]any{"date": raw})
}

// notify emits the export audit event for a served report. Emission is
// fire-and-forget and never affects the response already written.
func (h *ReportsHandler) notify(c *gin.Context, format models.ExportFormat, params map[string]any) {
	if h.notifier == nil {
		return
	}

	h.notifier.Emit(models.ExportEvent{
		Kind:      models.ExportJSON,
		Format:    format,
		Params:    params,
		ActorID:   c.GetHeader("X-Actor-ID"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

func (h *ReportsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
