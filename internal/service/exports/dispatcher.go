package exports

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/domain/models"
	"github.com/kayoni-co/stocklog/pkg/clients/audit"
)

const deliveryTimeout = 10 * time.Second

// LogRepository persists export events for later inspection.
type LogRepository interface {
	Insert(ctx context.Context, event models.ExportEvent) error
}

// Dispatcher records and publishes export events after a report succeeds.
// Both legs are best-effort: a failure is logged and swallowed, never
// surfaced to the report caller, and delivery happens off the request
// goroutine so the caller never blocks on it.
type Dispatcher struct {
	logs   LogRepository
	client audit.Client
	logger *zap.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

// NewDispatcher wires an export dispatcher. Either collaborator may be nil;
// the corresponding leg is skipped.
func NewDispatcher(logs LogRepository, client audit.Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logs:   logs,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Emit queues one export event for delivery and returns immediately.
func (d *Dispatcher) Emit(event models.ExportEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if event.ActorID == "" {
		event.ActorID = "anonymous"
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		d.deliver(ctx, event)
	}()
}

// deliver runs both best-effort legs, logging failures without escalating.
func (d *Dispatcher) deliver(ctx context.Context, event models.ExportEvent) {
	if d.logs != nil {
		if err := d.logs.Insert(ctx, event); err != nil {
			d.logger.Warn("failed to persist export log",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	if d.client != nil {
		if err := d.client.PublishEvent(ctx, event); err != nil {
			d.logger.Warn("failed to publish export event",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

// Drain blocks until every queued event has been attempted. Called on
// shutdown.
func (d *Dispatcher) Drain() {
	d.wg.Wait()
}
