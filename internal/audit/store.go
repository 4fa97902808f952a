package audit

import "context"

// Store persists audit entries. Implementations must be safe for concurrent
// appends and must never expose mutation of stored entries.
type Store interface {
	// Append durably records an entry and returns its sequence number. A
	// failed append must abort the action that triggered it; callers never
	// proceed on a lost audit write.
	Append(ctx context.Context, entry Entry) (int64, error)

	// Query returns entries matching the filter ordered by timestamp
	// descending (sequence breaks ties). Read-only and restartable: callers
	// re-issue the query to resume.
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}
