package models

import "time"

// ExportKind enumerates the delivery channels an export event can describe.
type ExportKind string

const (
	ExportJSON  ExportKind = "json"
	ExportEmail ExportKind = "email"
)

// ExportFormat enumerates the report shapes an export event can reference.
type ExportFormat string

const (
	FormatSummary ExportFormat = "summary"
	FormatMonthly ExportFormat = "monthly"
	FormatYearly  ExportFormat = "yearly"
	FormatDaily   ExportFormat = "daily"
	FormatPeriod  ExportFormat = "period"
)

// ExportEvent is a best-effort audit record describing a generated report.
// It is emitted after the report succeeds and never shares a failure path
// with the report itself.
type ExportEvent struct {
	ID         string         `bson:"eventId" json:"eventId"`
	Kind       ExportKind     `bson:"kind" json:"kind"`
	Format     ExportFormat   `bson:"format" json:"format"`
	Params     map[string]any `bson:"params,omitempty" json:"params,omitempty"`
	ActorID    string         `bson:"actorId" json:"actorId"`
	IP         string         `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string         `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	OccurredAt time.Time      `bson:"occurredAt" json:"occurredAt"`
}
