// Package postgres persists the audit trail in PostgreSQL.
//
// Appends are synchronous single-row inserts: the entry must be durable before
// the protected action completes, so there is no buffering or background
// publishing here. BIGSERIAL supplies the sequence that breaks timestamp ties.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medivault/internal/audit"
	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
	"medivault/pkg/requestcontext"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) (int64, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}

	var target any
	if entry.TargetID != nil {
		target = uuid.UUID(*entry.TargetID).String()
	}

	const query = `
		INSERT INTO audit_entries (actor_id, role, action, target_id, detail, ts, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`
	var seq int64
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(entry.ActorID).String(),
		entry.Role.String(),
		string(entry.Action),
		target,
		entry.Detail,
		entry.Timestamp,
		entry.SourceIP,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("append audit entry: %w: %v", sentinel.ErrUnavailable, err)
	}
	return seq, nil
}

func (s *Store) Query(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.ActorID != nil {
		conds = append(conds, "actor_id = "+arg(uuid.UUID(*filter.ActorID).String()))
	}
	if filter.Action != nil {
		conds = append(conds, "action = "+arg(string(*filter.Action)))
	}
	if filter.TargetID != nil {
		conds = append(conds, "target_id = "+arg(uuid.UUID(*filter.TargetID).String()))
	}
	if filter.Since != nil {
		conds = append(conds, "ts >= "+arg(*filter.Since))
	}
	if filter.Until != nil {
		conds = append(conds, "ts <= "+arg(*filter.Until))
	}

	query := "SELECT seq, actor_id, role, action, target_id, detail, ts, source_ip FROM audit_entries"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC, seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w: %v", sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e        audit.Entry
			actorRaw string
			roleRaw  string
			action   string
			target   sql.NullString
			ts       time.Time
		)
		if err := rows.Scan(&e.Seq, &actorRaw, &roleRaw, &action, &target, &e.Detail, &ts, &e.SourceIP); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		actorUUID, err := uuid.Parse(actorRaw)
		if err != nil {
			return nil, fmt.Errorf("corrupt actor id in audit entry %d: %w", e.Seq, err)
		}
		e.ActorID = id.ActorID(actorUUID)
		e.Role = id.Role(roleRaw)
		e.Action = audit.Action(action)
		e.Timestamp = ts
		if target.Valid {
			targetUUID, err := uuid.Parse(target.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt target id in audit entry %d: %w", e.Seq, err)
			}
			recordID := id.RecordID(targetUUID)
			e.TargetID = &recordID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
