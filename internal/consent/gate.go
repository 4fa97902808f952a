package consent

import (
	"context"
	"errors"
	"log/slog"

	"medivault/internal/audit"
	"medivault/internal/consent/metrics"
	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/platform/sentinel"
	"medivault/pkg/requestcontext"
)

// Gate enforces the consent decision per session. Every transition is written
// to the audit trail before the new state is stored, so a transition the trail
// never saw is a transition that never happened.
type Gate struct {
	store   Store
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewGate(store Store, auditor *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, auditor: auditor, logger: logger, metrics: m}
}

// Accept moves the session to Accepted. Legal from NotDecided and Revoked.
func (g *Gate) Accept(ctx context.Context, sessionID id.SessionID) error {
	return g.transition(ctx, sessionID, StateAccepted, audit.ActionConsentAccepted)
}

// Decline moves the session to Declined, which is terminal: no further
// transition or protected operation succeeds for this session.
func (g *Gate) Decline(ctx context.Context, sessionID id.SessionID) error {
	return g.transition(ctx, sessionID, StateDeclined, audit.ActionConsentDeclined)
}

// Revoke withdraws a previously accepted consent. Protected operations are
// blocked until a fresh Accept.
func (g *Gate) Revoke(ctx context.Context, sessionID id.SessionID) error {
	return g.transition(ctx, sessionID, StateRevoked, audit.ActionConsentRevoked)
}

// State returns the session's current decision.
func (g *Gate) State(ctx context.Context, sessionID id.SessionID) (Decision, error) {
	return g.store.Get(ctx, sessionID)
}

// Require fails closed unless the session's consent state is Accepted.
func (g *Gate) Require(ctx context.Context, sessionID id.SessionID) error {
	decision, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "consent state unavailable", err)
	}
	if decision.State != StateAccepted {
		g.metrics.ObserveDenial()
		return dErrors.New(dErrors.CodeAuthorizationDenied, "consent not accepted for this session")
	}
	return nil
}

func (g *Gate) transition(ctx context.Context, sessionID id.SessionID, target State, action audit.Action) error {
	current, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "consent state unavailable", err)
	}

	next, err := current.transitionTo(target, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeAuthorizationDenied,
				"consent transition not allowed from current state")
		}
		return err
	}

	// Audit before store: the trail must hold the transition before it takes
	// effect.
	err = g.auditor.Record(ctx, audit.Entry{
		Action: action,
		Detail: "consent state is now " + string(next.State),
	})
	if err != nil {
		return err
	}

	if err := g.store.Put(ctx, sessionID, next); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "could not store consent decision", err)
	}

	g.metrics.ObserveTransition(string(next.State))
	g.logger.Info("consent transition",
		"session_id", sessionID.String(),
		"state", string(next.State),
	)
	return nil
}
