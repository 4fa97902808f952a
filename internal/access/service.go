// Package access is the single enforcement wrapper around protected record
// operations: consent gate first, then policy resolution, then a durable
// audit append before any result reaches the caller.
//
// Keeping the ordering in one place (rather than at each call site) is what
// guarantees it uniformly.
package access

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medivault/internal/anonymize"
	"medivault/internal/audit"
	"medivault/internal/consent"
	"medivault/internal/cryptobox"
	"medivault/internal/policy"
	"medivault/internal/record"
	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/platform/sentinel"
	"medivault/pkg/requestcontext"
)

// DefaultRetentionDays is the retention period applied to new records when
// the caller does not set one.
const DefaultRetentionDays = 365

type Service struct {
	gate     *consent.Gate
	records  record.Store
	resolver *policy.Resolver
	auditor  *audit.Publisher
	codec    *cryptobox.Codec
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(gate *consent.Gate, records record.Store, resolver *policy.Resolver,
	auditor *audit.Publisher, codec *cryptobox.Codec, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gate:     gate,
		records:  records,
		resolver: resolver,
		auditor:  auditor,
		codec:    codec,
		logger:   logger,
		tracer:   otel.Tracer("medivault/internal/access"),
	}
}

// ViewRecord renders one record for the session's role. The audit entry for
// the access is durable before the rendered record is returned; if the append
// fails the caller gets an error and no data.
func (s *Service) ViewRecord(ctx context.Context, recordID id.RecordID) (policy.Rendered, error) {
	ctx, span := s.tracer.Start(ctx, "access.ViewRecord")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return policy.Rendered{}, err
	}

	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return policy.Rendered{}, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return policy.Rendered{}, dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	role := requestcontext.Role(ctx)
	rendered, anomalies := s.resolver.Resolve(role, rec)

	detail := "viewed record"
	if len(anomalies) > 0 {
		detail = fmt.Sprintf("viewed record with degraded fields: %v", anomalies)
	}
	err = s.auditor.Record(ctx, audit.Entry{
		Action:   audit.ActionRecordViewed,
		TargetID: &recordID,
		Detail:   detail,
	})
	if err != nil {
		return policy.Rendered{}, err
	}
	return rendered, nil
}

// ListRecords renders every record for the session's role under a single
// audit entry carrying the count.
func (s *Service) ListRecords(ctx context.Context) ([]policy.Rendered, error) {
	ctx, span := s.tracer.Start(ctx, "access.ListRecords")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return nil, err
	}

	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	role := requestcontext.Role(ctx)
	rendered := make([]policy.Rendered, 0, len(recs))
	for _, rec := range recs {
		view, _ := s.resolver.Resolve(role, rec)
		rendered = append(rendered, view)
	}

	err = s.auditor.Record(ctx, audit.Entry{
		Action: audit.ActionRecordViewed,
		Detail: fmt.Sprintf("listed %d records", len(rendered)),
	})
	if err != nil {
		return nil, err
	}
	return rendered, nil
}

// CreateRecordInput carries the plaintext intake form. The diagnosis is
// sealed before it ever reaches a store.
type CreateRecordInput struct {
	Name          string
	Contact       string
	Email         string
	Address       string
	DateOfBirth   string
	BloodGroup    string
	Diagnosis     string
	ConsentGiven  bool
	RetentionDays int
}

// CreateRecord validates the intake, seals medical fields, stores the record,
// and audits the creation. The record id is only reported after the audit
// entry is durable.
func (s *Service) CreateRecord(ctx context.Context, input CreateRecordInput) (id.RecordID, error) {
	ctx, span := s.tracer.Start(ctx, "access.CreateRecord")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return id.RecordID{}, err
	}
	if input.Name == "" {
		return id.RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if input.Contact != "" && !anonymize.ValidContact(input.Contact) {
		return id.RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "contact is not a valid phone number")
	}
	if input.Email != "" && !anonymize.ValidEmail(input.Email) {
		return id.RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
	}

	sealedDiagnosis, err := s.codec.Encrypt(input.Diagnosis)
	if err != nil {
		return id.RecordID{}, dErrors.Wrap(dErrors.CodeInternal, "could not seal medical data", err)
	}

	now := requestcontext.Now(ctx)
	retentionDays := input.RetentionDays
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	deadline := now.AddDate(0, 0, retentionDays)

	rec := record.Record{
		ID: id.NewRecordID(),
		Fields: map[string]record.Field{
			"name":          {Category: id.CategoryIdentity, Tag: id.TagPlain, Value: input.Name},
			"contact":       {Category: id.CategoryContact, Tag: id.TagPlain, Value: input.Contact},
			"email":         {Category: id.CategoryEmail, Tag: id.TagPlain, Value: input.Email},
			"address":       {Category: id.CategoryAddress, Tag: id.TagPlain, Value: input.Address},
			"date_of_birth": {Category: id.CategoryDemographic, Tag: id.TagPlain, Value: input.DateOfBirth},
			"blood_group":   {Category: id.CategoryDemographic, Tag: id.TagPlain, Value: input.BloodGroup},
			"diagnosis":     {Category: id.CategoryMedical, Tag: id.TagEncrypted, Value: sealedDiagnosis},
		},
		ConsentGiven:      input.ConsentGiven,
		RetentionDeadline: &deadline,
		CreatedAt:         now,
		ModifiedAt:        now,
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return id.RecordID{}, dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	err = s.auditor.Record(ctx, audit.Entry{
		Action:   audit.ActionRecordCreated,
		TargetID: &rec.ID,
		Detail:   "created record for " + input.Name,
	})
	if err != nil {
		return id.RecordID{}, err
	}
	return rec.ID, nil
}

// UpdateRecordInput carries the basic fields the front desk may correct.
// Empty values leave the stored field untouched.
type UpdateRecordInput struct {
	Name        string
	Contact     string
	Email       string
	DateOfBirth string
}

// UpdateRecord rewrites basic contact fields. Anonymized records are
// immutable: their identifying fields no longer exist to update.
func (s *Service) UpdateRecord(ctx context.Context, recordID id.RecordID, input UpdateRecordInput) error {
	ctx, span := s.tracer.Start(ctx, "access.UpdateRecord")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return err
	}
	if input.Contact != "" && !anonymize.ValidContact(input.Contact) {
		return dErrors.New(dErrors.CodeInvalidInput, "contact is not a valid phone number")
	}
	if input.Email != "" && !anonymize.ValidEmail(input.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
	}

	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}
	if rec.Anonymized {
		return dErrors.New(dErrors.CodeAuthorizationDenied, "record is anonymized")
	}

	setPlain := func(name, value string) {
		if value == "" {
			return
		}
		field := rec.Fields[name]
		field.Value = value
		rec.Fields[name] = field
	}
	setPlain("name", input.Name)
	setPlain("contact", input.Contact)
	setPlain("email", input.Email)
	setPlain("date_of_birth", input.DateOfBirth)
	rec.ModifiedAt = requestcontext.Now(ctx)

	if err := s.records.Save(ctx, rec); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	return s.auditor.Record(ctx, audit.Entry{
		Action:   audit.ActionRecordUpdated,
		TargetID: &recordID,
		Detail:   "updated basic record fields",
	})
}

// AnonymizeRecord irreversibly replaces the record's identifying fields. The
// store keeps no pre-image; the audit entry is durable before success is
// reported.
func (s *Service) AnonymizeRecord(ctx context.Context, recordID id.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "access.AnonymizeRecord")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return err
	}

	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	if err := record.Anonymize(&rec, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeInvalidInput, "record is already anonymized")
		}
		return err
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	return s.auditor.Record(ctx, audit.Entry{
		Action:   audit.ActionRecordAnonymized,
		TargetID: &recordID,
		Detail:   "record anonymized",
	})
}

// ExportRecords renders every record for the session's role and returns a CSV
// snapshot. Exports are privileged: the audit entry precedes the payload.
func (s *Service) ExportRecords(ctx context.Context) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "access.ExportRecords")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return nil, err
	}

	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "record store failure", err)
	}

	role := requestcontext.Role(ctx)

	// Stable column set: union of visible field names across the export.
	columnSet := make(map[string]bool)
	views := make([]policy.Rendered, 0, len(recs))
	for _, rec := range recs {
		view, _ := s.resolver.Resolve(role, rec)
		views = append(views, view)
		for name := range view.Fields {
			columnSet[name] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for name := range columnSet {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{"record_id"}, columns...)); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, view := range views {
		row := make([]string, 0, len(columns)+1)
		row = append(row, view.RecordID)
		for _, name := range columns {
			row = append(row, view.Fields[name])
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	err = s.auditor.Record(ctx, audit.Entry{
		Action: audit.ActionRecordsExported,
		Detail: fmt.Sprintf("exported %d records as csv", len(views)),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AuditTrail exposes the read side of the trail to authorized callers.
func (s *Service) AuditTrail(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "access.AuditTrail")
	defer span.End()

	if err := s.requireConsent(ctx); err != nil {
		return nil, err
	}
	if requestcontext.Role(ctx) != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeAuthorizationDenied, "audit trail is admin-only")
	}
	return s.auditor.Query(ctx, filter)
}

func (s *Service) requireConsent(ctx context.Context) error {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeAuthorizationDenied, "no session")
	}
	return s.gate.Require(ctx, sessionID)
}
