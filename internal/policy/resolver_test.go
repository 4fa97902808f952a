package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medivault/internal/cryptobox"
	"medivault/internal/record"
	id "medivault/pkg/domain"
	"medivault/pkg/testutil"
)

func newTestResolver(t *testing.T) (*Resolver, *cryptobox.Codec) {
	t.Helper()
	key, err := cryptobox.GenerateKey()
	require.NoError(t, err)
	codec, err := cryptobox.NewFromBase64(key)
	require.NoError(t, err)
	return NewResolver(Default(), codec, nil, nil), codec
}

func sampleRecord(t *testing.T, codec *cryptobox.Codec) record.Record {
	t.Helper()
	sealed, err := codec.Encrypt("Hypertension stage 2")
	require.NoError(t, err)
	return record.Record{
		ID: id.NewRecordID(),
		Fields: map[string]record.Field{
			"name":        {Category: id.CategoryIdentity, Tag: id.TagPlain, Value: "Jane Smith"},
			"contact":     {Category: id.CategoryContact, Tag: id.TagPlain, Value: "+923001234567"},
			"email":       {Category: id.CategoryEmail, Tag: id.TagPlain, Value: "jane.smith@email.com"},
			"address":     {Category: id.CategoryAddress, Tag: id.TagPlain, Value: "House 12, Lahore"},
			"blood_group": {Category: id.CategoryDemographic, Tag: id.TagPlain, Value: "B+"},
			"diagnosis":   {Category: id.CategoryMedical, Tag: id.TagEncrypted, Value: sealed},
		},
		ConsentGiven: true,
		CreatedAt:    testutil.FixedDate,
		ModifiedAt:   testutil.FixedDate,
	}
}

func TestResolveAdminSeesPlaintext(t *testing.T) {
	resolver, codec := newTestResolver(t)
	rec := sampleRecord(t, codec)

	rendered, anomalies := resolver.Resolve(id.RoleAdmin, rec)
	require.Empty(t, anomalies)

	assert.Equal(t, "Jane Smith", rendered.Fields["name"])
	assert.Equal(t, "+923001234567", rendered.Fields["contact"])
	assert.Equal(t, "jane.smith@email.com", rendered.Fields["email"])
	assert.Equal(t, "Hypertension stage 2", rendered.Fields["diagnosis"])
	assert.True(t, rendered.ConsentGiven)
}

func TestResolveClinicianGetsMaskedIdentity(t *testing.T) {
	resolver, codec := newTestResolver(t)
	rec := sampleRecord(t, codec)

	rendered, anomalies := resolver.Resolve(id.RoleClinician, rec)
	require.Empty(t, anomalies)

	assert.Contains(t, rendered.Fields["name"], "ANON_")
	assert.Equal(t, "XXX-XXX-4567", rendered.Fields["contact"])
	assert.Equal(t, "j***@email.com", rendered.Fields["email"])
	assert.Equal(t, "*****, Lahore", rendered.Fields["address"])
	// Demographics pass through; the diagnosis decrypts for key holders.
	assert.Equal(t, "B+", rendered.Fields["blood_group"])
	assert.Equal(t, "Hypertension stage 2", rendered.Fields["diagnosis"])
}

func TestResolveFrontdeskNeverSeesMedicalContent(t *testing.T) {
	resolver, codec := newTestResolver(t)
	rec := sampleRecord(t, codec)

	rendered, anomalies := resolver.Resolve(id.RoleFrontdesk, rec)
	require.Empty(t, anomalies)

	// Hidden means absent, not blanked.
	_, present := rendered.Fields["diagnosis"]
	assert.False(t, present)
	assert.Equal(t, "Jane Smith", rendered.Fields["name"])
	assert.Equal(t, "*****, Lahore", rendered.Fields["address"])
}

func TestResolveUnknownRoleSeesNothing(t *testing.T) {
	resolver, codec := newTestResolver(t)
	rec := sampleRecord(t, codec)

	rendered, anomalies := resolver.Resolve("auditor", rec)
	assert.Empty(t, anomalies)
	assert.Empty(t, rendered.Fields)
}

func TestResolveSealedFieldWithoutKeyIsHidden(t *testing.T) {
	// A policy that grants full visibility to a role without the key must
	// still never emit ciphertext.
	modes := map[id.Role]map[id.FieldCategory]VisibilityMode{
		id.RoleAdmin:     fullRow(),
		id.RoleClinician: fullRow(),
		id.RoleFrontdesk: fullRow(),
	}
	table, err := NewTable(modes, map[id.Role]bool{id.RoleAdmin: true})
	require.NoError(t, err)

	key, err := cryptobox.GenerateKey()
	require.NoError(t, err)
	codec, err := cryptobox.NewFromBase64(key)
	require.NoError(t, err)
	resolver := NewResolver(table, codec, nil, nil)

	rec := sampleRecord(t, codec)
	rendered, anomalies := resolver.Resolve(id.RoleFrontdesk, rec)
	assert.Empty(t, anomalies)
	_, present := rendered.Fields["diagnosis"]
	assert.False(t, present)
}

func TestResolveDecryptionFailureDegradesToHidden(t *testing.T) {
	resolver, codec := newTestResolver(t)
	rec := sampleRecord(t, codec)

	// Corrupt the sealed value. The field must vanish and the anomaly must
	// be reported to the caller for its audit entry.
	field := rec.Fields["diagnosis"]
	field.Value = "not-a-valid-envelope"
	rec.Fields["diagnosis"] = field

	rendered, anomalies := resolver.Resolve(id.RoleAdmin, rec)
	_, present := rendered.Fields["diagnosis"]
	assert.False(t, present)
	assert.Equal(t, []string{"decryption_failed:diagnosis"}, anomalies)

	// Other fields are unaffected.
	assert.Equal(t, "Jane Smith", rendered.Fields["name"])
}
