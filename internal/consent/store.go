package consent

import (
	"context"

	id "medivault/pkg/domain"
)

// Store holds per-session consent decisions. A session with no stored
// decision is NotDecided; implementations return that zero state rather than
// a not-found error so the gate always has a position to evaluate.
type Store interface {
	Get(ctx context.Context, sessionID id.SessionID) (Decision, error)
	Put(ctx context.Context, sessionID id.SessionID, decision Decision) error
}
