package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/config"
	"github.com/kayoni-co/stocklog/internal/domain/models"
	"github.com/kayoni-co/stocklog/internal/repository/sheets"
	"github.com/kayoni-co/stocklog/internal/service/exports"
	"github.com/kayoni-co/stocklog/internal/service/reporting"
)

// Scheduler manages the recurring report job: once a week it aggregates the
// previous seven days, archives the summary and emits an export event.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	dispatcher   *exports.Dispatcher
	archive      sheets.Archive
	cfg          config.Config
	loc          *time.Location
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The archive may be nil when
// no spreadsheet is configured.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, dispatcher *exports.Dispatcher, archive sheets.Archive, loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		reportingSvc: reportingSvc,
		dispatcher:   dispatcher,
		archive:      archive,
		cfg:          cfg,
		loc:          loc,
		logger:       logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendWeeklyReport)
	if err != nil {
		s.logger.Error("failed to schedule weekly report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Window: the seven full days ending yesterday.
	now := time.Now().In(s.loc)
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, s.loc).Add(-time.Millisecond)
	start := time.Date(y, m, d-7, 0, 0, 0, 0, s.loc)

	report, err := s.reportingSvc.PeriodReport(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	if s.archive != nil {
		if err := s.archive.AppendReportSummary(ctx, *report); err != nil {
			s.logger.Error("failed to archive weekly report", zap.Error(err))
		} else {
			s.logger.Info("weekly report archived", zap.String("label", report.Period.Label))
		}
	}

	if s.dispatcher != nil {
		s.dispatcher.Emit(models.ExportEvent{
			Kind:    models.ExportEmail,
			Format:  models.FormatPeriod,
			Params:  map[string]any{"start": start.Format("2006-01-02"), "end": end.Format("2006-01-02")},
			ActorID: "scheduler",
		})
	}
}
