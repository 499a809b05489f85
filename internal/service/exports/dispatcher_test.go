package exports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

type fakeLogRepo struct {
	mu     sync.Mutex
	events []models.ExportEvent
	err    error
}

func (f *fakeLogRepo) Insert(ctx context.Context, event models.ExportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLogRepo) all() []models.ExportEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ExportEvent(nil), f.events...)
}

type fakeWebhook struct {
	mu        sync.Mutex
	published []models.ExportEvent
	err       error
}

func (f *fakeWebhook) PublishEvent(ctx context.Context, event models.ExportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeWebhook) all() []models.ExportEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ExportEvent(nil), f.published...)
}

func TestEmitDeliversBothLegs(t *testing.T) {
	logs := &fakeLogRepo{}
	webhook := &fakeWebhook{}
	d := NewDispatcher(logs, webhook, nil)

	d.Emit(models.ExportEvent{
		Kind:    models.ExportJSON,
		Format:  models.FormatMonthly,
		Params:  map[string]any{"year": 2026, "month": 1},
		ActorID: "admin-1",
	})
	d.Drain()

	stored := logs.all()
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].ID, "event id is assigned on emit")
	assert.False(t, stored[0].OccurredAt.IsZero())
	assert.Equal(t, "admin-1", stored[0].ActorID)

	published := webhook.all()
	require.Len(t, published, 1)
	assert.Equal(t, stored[0].ID, published[0].ID)
}

func TestEmitDefaultsActor(t *testing.T) {
	logs := &fakeLogRepo{}
	d := NewDispatcher(logs, nil, nil)

	d.Emit(models.ExportEvent{Kind: models.ExportJSON, Format: models.FormatSummary})
	d.Drain()

	stored := logs.all()
	require.Len(t, stored, 1)
	assert.Equal(t, "anonymous", stored[0].ActorID)
}

func TestEmitSwallowsFailures(t *testing.T) {
	logs := &fakeLogRepo{err: errors.Join(models.ErrStorage, errors.New("down"))}
	webhook := &fakeWebhook{err: errors.New("503 from webhook")}
	d := NewDispatcher(logs, webhook, nil)

	// Must not panic or block; failures on both legs are absorbed.
	d.Emit(models.ExportEvent{Kind: models.ExportJSON, Format: models.FormatYearly})
	d.Drain()

	assert.Empty(t, logs.all())
	assert.Empty(t, webhook.all())
}

func TestEmitWebhookFailureStillPersists(t *testing.T) {
	logs := &fakeLogRepo{}
	webhook := &fakeWebhook{err: errors.New("timeout")}
	d := NewDispatcher(logs, webhook, nil)

	d.Emit(models.ExportEvent{Kind: models.ExportEmail, Format: models.FormatPeriod})
	d.Drain()

	require.Len(t, logs.all(), 1)
}

func TestEmitPreservesSuppliedIdentity(t *testing.T) {
	logs := &fakeLogRepo{}
	d := NewDispatcher(logs, nil, nil)

	occurred := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	d.Emit(models.ExportEvent{
		ID:         "evt-123",
		Kind:       models.ExportJSON,
		Format:     models.FormatDaily,
		ActorID:    "worker-7",
		OccurredAt: occurred,
	})
	d.Drain()

	stored := logs.all()
	require.Len(t, stored, 1)
	assert.Equal(t, "evt-123", stored[0].ID)
	assert.Equal(t, occurred, stored[0].OccurredAt)
}
