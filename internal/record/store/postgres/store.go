// Package postgres persists protected records. Field maps are stored as JSONB
// so the field set can vary per record without schema churn; encrypted field
// values arrive here already sealed by the codec.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medivault/internal/record"
	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type fieldRow struct {
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Value    string `json:"value"`
}

func encodeFields(fields map[string]record.Field) ([]byte, error) {
	rows := make(map[string]fieldRow, len(fields))
	for name, f := range fields {
		rows[name] = fieldRow{Category: f.Category.String(), Tag: string(f.Tag), Value: f.Value}
	}
	return json.Marshal(rows)
}

func decodeFields(raw []byte) (map[string]record.Field, error) {
	var rows map[string]fieldRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	fields := make(map[string]record.Field, len(rows))
	for name, r := range rows {
		category, err := id.ParseFieldCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = record.Field{Category: category, Tag: id.FieldTag(r.Tag), Value: r.Value}
	}
	return fields, nil
}

func (s *Store) Save(ctx context.Context, rec record.Record) error {
	fields, err := encodeFields(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode record fields: %w", err)
	}

	const query = `
		INSERT INTO records (id, fields, consent_given, retention_deadline, created_at, modified_at, anonymized)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			fields = EXCLUDED.fields,
			consent_given = EXCLUDED.consent_given,
			retention_deadline = EXCLUDED.retention_deadline,
			modified_at = EXCLUDED.modified_at,
			anonymized = EXCLUDED.anonymized
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID).String(),
		fields,
		rec.ConsentGiven,
		rec.RetentionDeadline,
		rec.CreatedAt,
		rec.ModifiedAt,
		rec.Anonymized,
	)
	if err != nil {
		return fmt.Errorf("save record: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, recordID id.RecordID) (record.Record, error) {
	const query = `
		SELECT id, fields, consent_given, retention_deadline, created_at, modified_at, anonymized
		FROM records WHERE id = $1
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(recordID).String()))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, sentinel.ErrNotFound
	}
	return rec, err
}

func (s *Store) List(ctx context.Context) ([]record.Record, error) {
	const query = `
		SELECT id, fields, consent_given, retention_deadline, created_at, modified_at, anonymized
		FROM records ORDER BY created_at
	`
	return s.queryRecords(ctx, query)
}

func (s *Store) ScanByRetention(ctx context.Context) ([]record.Record, error) {
	const query = `
		SELECT id, fields, consent_given, retention_deadline, created_at, modified_at, anonymized
		FROM records WHERE retention_deadline IS NOT NULL ORDER BY retention_deadline
	`
	return s.queryRecords(ctx, query)
}

func (s *Store) queryRecords(ctx context.Context, query string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (record.Record, error) {
	var (
		rec      record.Record
		rawID    string
		fields   []byte
		deadline sql.NullTime
		created  time.Time
		modified time.Time
	)
	if err := row.Scan(&rawID, &fields, &rec.ConsentGiven, &deadline, &created, &modified, &rec.Anonymized); err != nil {
		return record.Record{}, err
	}
	recUUID, err := uuid.Parse(rawID)
	if err != nil {
		return record.Record{}, fmt.Errorf("corrupt record id: %w", err)
	}
	rec.ID = id.RecordID(recUUID)
	rec.Fields, err = decodeFields(fields)
	if err != nil {
		return record.Record{}, err
	}
	if deadline.Valid {
		d := deadline.Time
		rec.RetentionDeadline = &d
	}
	rec.CreatedAt = created
	rec.ModifiedAt = modified
	return rec, nil
}
