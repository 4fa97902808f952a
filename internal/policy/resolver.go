package policy

import (
	"log/slog"

	"medivault/internal/anonymize"
	"medivault/internal/cryptobox"
	"medivault/internal/policy/metrics"
	"medivault/internal/record"
	id "medivault/pkg/domain"
)

// Rendered is the role-adjusted view of a record. Fields whose mode resolved
// to Hidden are absent, not blanked.
type Rendered struct {
	RecordID     string            `json:"record_id"`
	Fields       map[string]string `json:"fields"`
	Anonymized   bool              `json:"anonymized"`
	ConsentGiven bool              `json:"consent_given"`
}

// Resolver applies the visibility table to whole records. It holds no mutable
// state; the audit-per-resolve guarantee belongs to the access wrapper that
// calls it.
type Resolver struct {
	table   *Table
	codec   *cryptobox.Codec
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewResolver(table *Table, codec *cryptobox.Codec, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{table: table, codec: codec, logger: logger, metrics: m}
}

// Table exposes the resolver's fixed policy table.
func (r *Resolver) Table() *Table { return r.table }

// Resolve renders every field of rec per the (role, category) mode. The
// returned anomalies name fields that degraded (decryption failure, malformed
// input); the caller folds them into the audit entry for this access.
//
// Fail-closed rules: a sealed value whose role does not hold the key is
// Hidden, and so is a sealed value that fails authentication, with no partial
// plaintext ever emitted.
func (r *Resolver) Resolve(role id.Role, rec record.Record) (Rendered, []string) {
	rendered := Rendered{
		RecordID:     rec.ID.String(),
		Fields:       make(map[string]string, len(rec.Fields)),
		Anonymized:   rec.Anonymized,
		ConsentGiven: rec.ConsentGiven,
	}
	var anomalies []string

	for name, field := range rec.Fields {
		mode := r.table.Mode(role, field.Category)
		r.metrics.ObserveFieldResolution(role.String(), string(mode))
		if mode == ModeHidden {
			continue
		}

		value := field.Value
		if field.Tag == id.TagEncrypted {
			if !r.table.HoldsKey(role) {
				continue
			}
			plaintext, err := r.codec.Decrypt(value)
			if err != nil {
				// Fatal for this field only; render nothing rather than
				// ciphertext or partial output.
				r.logger.Warn("field decryption failed",
					"log_type", "audit", "anomaly", "decryption_failed",
					"record_id", rec.ID.String(), "field", name)
				r.metrics.ObserveAnomaly("decryption_failed")
				anomalies = append(anomalies, "decryption_failed:"+name)
				continue
			}
			value = plaintext
		}

		switch mode {
		case ModeFull, ModeEncrypted:
			rendered.Fields[name] = value
		case ModeMasked:
			rendered.Fields[name] = r.mask(rec.ID, field.Category, value)
		}
	}
	return rendered, anomalies
}

// mask picks the category-appropriate display mask.
func (r *Resolver) mask(recordID id.RecordID, category id.FieldCategory, value string) string {
	switch category {
	case id.CategoryIdentity:
		return anonymize.PseudonymFor(recordID)
	case id.CategoryContact:
		return anonymize.MaskContact(value)
	case id.CategoryEmail:
		return anonymize.MaskEmail(value)
	case id.CategoryAddress:
		return anonymize.MaskAddress(value)
	case id.CategoryMedical:
		return anonymize.MaskDiagnosis(value)
	default:
		return anonymize.AddressPlaceholder
	}
}
