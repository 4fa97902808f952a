package retention

import (
	"context"
	"sync"

	"medivault/internal/audit"
	"medivault/internal/record"
	"medivault/internal/retention/metrics"
	id "medivault/pkg/domain"
	"medivault/pkg/requestcontext"
)

// Summary is the per-status breakdown of the record store.
type Summary struct {
	Active       int             `json:"active"`
	ExpiringSoon int             `json:"expiring_soon"`
	Expired      int             `json:"expired"`
	Unmanaged    int             `json:"unmanaged"`
	ExpiredIDs   []id.RecordID   `json:"expired_ids"`
	Statuses     map[string]Status `json:"statuses"`
}

// Reporter scans the record store and produces status summaries.
// Classification itself is stateless; the reporter only remembers which
// records it has already seen expired so each transition into Expired is
// audit-logged exactly once per process.
type Reporter struct {
	records  record.Store
	auditor  *audit.Publisher
	warnDays int
	metrics  *metrics.Metrics

	mu          sync.Mutex
	expiredSeen map[id.RecordID]bool
}

func NewReporter(records record.Store, auditor *audit.Publisher, warnWindowDays int, m *metrics.Metrics) *Reporter {
	if warnWindowDays <= 0 {
		warnWindowDays = DefaultWarnWindowDays
	}
	return &Reporter{
		records:     records,
		auditor:     auditor,
		warnDays:    warnWindowDays,
		metrics:     m,
		expiredSeen: make(map[id.RecordID]bool),
	}
}

// Report classifies every record against the context clock's date. Newly
// observed expirations are written to the audit trail before the summary is
// returned; a failed audit append aborts the report.
func (r *Reporter) Report(ctx context.Context) (Summary, error) {
	all, err := r.records.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	managed, err := r.records.ScanByRetention(ctx)
	if err != nil {
		return Summary{}, err
	}

	today := requestcontext.Today(ctx)
	summary := Summary{Statuses: make(map[string]Status, len(all))}
	var newlyExpired []id.RecordID

	for _, rec := range all {
		if rec.RetentionDeadline == nil {
			summary.Unmanaged++
			summary.Statuses[rec.ID.String()] = StatusUnmanaged
		}
	}

	// The scan orders by deadline, so ExpiredIDs comes out nearest first.
	r.mu.Lock()
	for _, rec := range managed {
		status := Classify(rec.RetentionDeadline, today, r.warnDays)
		summary.Statuses[rec.ID.String()] = status
		switch status {
		case StatusActive:
			summary.Active++
		case StatusExpiringSoon:
			summary.ExpiringSoon++
		case StatusExpired:
			summary.Expired++
			summary.ExpiredIDs = append(summary.ExpiredIDs, rec.ID)
			if !r.expiredSeen[rec.ID] {
				r.expiredSeen[rec.ID] = true
				newlyExpired = append(newlyExpired, rec.ID)
			}
		}
	}
	r.mu.Unlock()

	for _, recordID := range newlyExpired {
		target := recordID
		err := r.auditor.Record(ctx, audit.Entry{
			Action:   audit.ActionRetentionExpired,
			TargetID: &target,
			Detail:   "retention deadline passed",
		})
		if err != nil {
			// The transition was not durably recorded; let the next report
			// observe and log it again.
			r.mu.Lock()
			delete(r.expiredSeen, recordID)
			r.mu.Unlock()
			return Summary{}, err
		}
	}

	r.metrics.ObserveReport(map[string]int{
		string(StatusActive):       summary.Active,
		string(StatusExpiringSoon): summary.ExpiringSoon,
		string(StatusExpired):      summary.Expired,
		string(StatusUnmanaged):    summary.Unmanaged,
	})
	return summary, nil
}
