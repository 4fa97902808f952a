package domain

import (
	"github.com/google/uuid"

	dErrors "medivault/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types keep a record id from being passed
// where an actor id is expected; construct via the Parse functions at trust
// boundaries so invalid and nil UUIDs are rejected before reaching services.
type (
	RecordID  uuid.UUID
	ActorID   uuid.UUID
	SessionID uuid.UUID
)

func NewRecordID() RecordID   { return RecordID(uuid.New()) }
func NewActorID() ActorID     { return ActorID(uuid.New()) }
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id RecordID) String() string  { return uuid.UUID(id).String() }
func (id ActorID) String() string   { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id RecordID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseRecordID constructs a RecordID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RecordID{}, err
	}
	return RecordID(u), nil
}

// ParseActorID constructs an ActorID from external input.
func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ActorID{}, err
	}
	return ActorID(u), nil
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
