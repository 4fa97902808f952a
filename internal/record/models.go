package record

import (
	"time"

	"medivault/internal/anonymize"
	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
)

// Field is one named value of a protected record.
type Field struct {
	Category id.FieldCategory
	Tag      id.FieldTag
	Value    string
}

// Record is a protected entity. Once Anonymized is true the original values of
// identifying fields are gone: the transform below overwrites them in place
// and nothing retains the pre-image.
type Record struct {
	ID                id.RecordID
	Fields            map[string]Field
	ConsentGiven      bool
	RetentionDeadline *time.Time
	CreatedAt         time.Time
	ModifiedAt        time.Time
	Anonymized        bool
}

// Clone returns a deep copy so stores never hand out aliased field maps.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(map[string]Field, len(r.Fields))
	for name, f := range r.Fields {
		out.Fields[name] = f
	}
	if r.RetentionDeadline != nil {
		d := *r.RetentionDeadline
		out.RetentionDeadline = &d
	}
	return out
}

// Anonymize irreversibly replaces the record's identifying fields with derived
// forms: the name collapses to the record's pseudonym, contact/email/address
// become masks. Fields are overwritten in place, so after this returns the
// pre-images exist nowhere in the record. Already-anonymized records are
// rejected with ErrInvalidState rather than transformed twice.
func Anonymize(rec *Record, now time.Time) error {
	if rec.Anonymized {
		return sentinel.ErrInvalidState
	}
	for name, f := range rec.Fields {
		switch f.Category {
		case id.CategoryIdentity:
			f.Value = anonymize.PseudonymFor(rec.ID)
		case id.CategoryContact:
			f.Value = anonymize.MaskContact(f.Value)
		case id.CategoryEmail:
			f.Value = anonymize.MaskEmail(f.Value)
		case id.CategoryAddress:
			f.Value = anonymize.MaskAddress(f.Value)
		default:
			continue
		}
		f.Tag = id.TagDerived
		rec.Fields[name] = f
	}
	rec.Anonymized = true
	rec.ModifiedAt = now
	return nil
}
