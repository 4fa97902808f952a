package audit

import (
	"time"

	id "medivault/pkg/domain"
)

// Action is the kind of privileged operation an entry records.
type Action string

const (
	ActionLogin            Action = "login"
	ActionLoginFailed      Action = "login_failed"
	ActionRecordViewed     Action = "record_viewed"
	ActionRecordCreated    Action = "record_created"
	ActionRecordUpdated    Action = "record_updated"
	ActionRecordAnonymized Action = "record_anonymized"
	ActionRecordsExported  Action = "records_exported"
	ActionConsentAccepted  Action = "consent_accepted"
	ActionConsentDeclined  Action = "consent_declined"
	ActionConsentRevoked   Action = "consent_revoked"
	ActionRetentionExpired Action = "retention_expired"
	ActionAnomaly          Action = "anomaly"
)

// Entry is one immutable line of the audit trail. Role is snapshotted at the
// time of the action, never looked up later. Entries are create-only: the
// component exposes no update or delete.
type Entry struct {
	// Seq is assigned by the store on append. Together with Timestamp it
	// gives entries a total order under concurrent appends.
	Seq       int64
	ActorID   id.ActorID
	Role      id.Role
	Action    Action
	TargetID  *id.RecordID
	Detail    string
	Timestamp time.Time
	SourceIP  string
}

// Filter narrows a Query. Zero-valued fields match everything; Limit <= 0
// means no limit.
type Filter struct {
	ActorID  *id.ActorID
	Action   *Action
	TargetID *id.RecordID
	Since    *time.Time
	Until    *time.Time
	Limit    int
}

// Matches reports whether an entry passes the filter. Exported for store
// implementations that filter in process.
func (f Filter) Matches(e Entry) bool {
	if f.ActorID != nil && e.ActorID != *f.ActorID {
		return false
	}
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	if f.TargetID != nil && (e.TargetID == nil || *e.TargetID != *f.TargetID) {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	return true
}
