package record

import (
	"context"

	id "medivault/pkg/domain"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code.
type Store interface {
	Save(ctx context.Context, rec Record) error
	FindByID(ctx context.Context, recordID id.RecordID) (Record, error)
	List(ctx context.Context) ([]Record, error)

	// ScanByRetention returns only records that carry a retention deadline,
	// for classification. Records without a deadline are unmanaged and
	// reported separately by the caller.
	ScanByRetention(ctx context.Context) ([]Record, error)
}
