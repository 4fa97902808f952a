package audit

import (
	"context"
	"log/slog"

	"medivault/internal/anonymize"
	"medivault/internal/audit/metrics"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/requestcontext"
)

// Publisher is the single enforcement point for writing the trail. It enriches
// entries from the session context, bounds detail strings, and translates
// store failures into CodeAuditUnavailable so the triggering action aborts.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(store Store, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger, metrics: m}
}

// Record fills session-derived fields, sanitizes the detail, and appends. The
// append is durable before Record returns; callers treat an error as fatal for
// the action they were about to complete.
func (p *Publisher) Record(ctx context.Context, entry Entry) error {
	if entry.ActorID.IsNil() {
		entry.ActorID = requestcontext.ActorID(ctx)
	}
	if entry.Role == "" {
		entry.Role = requestcontext.Role(ctx)
	}
	if entry.SourceIP == "" {
		entry.SourceIP = requestcontext.ClientIP(ctx)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	entry.Detail = anonymize.Sanitize(entry.Detail)

	seq, err := p.store.Append(ctx, entry)
	if err != nil {
		p.metrics.ObserveFailure()
		p.logger.Error("audit append failed",
			"log_type", "audit", "action", string(entry.Action), "error", err)
		return dErrors.Wrap(dErrors.CodeAuditUnavailable, "audit trail unavailable", err)
	}

	p.metrics.ObserveAppend(string(entry.Action))
	p.logger.Info("audit entry recorded",
		"log_type", "audit",
		"seq", seq,
		"action", string(entry.Action),
		"actor_id", entry.ActorID.String(),
		"role", entry.Role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Query exposes the read side of the trail unchanged.
func (p *Publisher) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return p.store.Query(ctx, filter)
}
