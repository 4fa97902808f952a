package anonymize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medivault/pkg/domain"
)

func TestPseudonymFor(t *testing.T) {
	recordID := id.NewRecordID()

	t.Run("is stable for the same record", func(t *testing.T) {
		assert.Equal(t, PseudonymFor(recordID), PseudonymFor(recordID))
	})

	t.Run("differs across records", func(t *testing.T) {
		assert.NotEqual(t, PseudonymFor(recordID), PseudonymFor(id.NewRecordID()))
	})

	t.Run("never contains the replaced value", func(t *testing.T) {
		label := PseudonymFor(recordID)
		require.True(t, strings.HasPrefix(label, "ANON_"))
		assert.Len(t, label, len("ANON_")+8)
	})
}

func TestMaskContact(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"keeps last four digits", "+923001234567", "XXX-XXX-4567"},
		{"handles pre-formatted numbers", "0300-123-9876", "XXX-XXX-9876"},
		{"degrades when too few digits", "123", ContactPlaceholder},
		{"degrades on empty input", "", ContactPlaceholder},
		{"degrades on non-numeric input", "no digits here", ContactPlaceholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskContact(tc.in))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"keeps first char and domain", "jane.smith@email.com", "j***@email.com"},
		{"mask width does not track local part length", "j@email.com", "j***@email.com"},
		{"keeps a multibyte first rune whole", "émile@post.fr", "é***@post.fr"},
		{"degrades without an at sign", "not-an-email", EmailPlaceholder},
		{"degrades with empty local part", "@email.com", EmailPlaceholder},
		{"degrades with empty domain", "jane@", EmailPlaceholder},
		{"degrades on empty input", "", EmailPlaceholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskEmail(tc.in))
		})
	}
}

func TestMaskAddress(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"keeps only the city", "House 12, Street 4, Lahore", "*****, Lahore"},
		{"degrades without a comma", "just a street name", AddressPlaceholder},
		{"degrades with empty city segment", "House 12,", AddressPlaceholder},
		{"degrades on empty input", "", AddressPlaceholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskAddress(tc.in))
		})
	}
}

func TestMaskDiagnosis(t *testing.T) {
	assert.Equal(t, "Hypertension ***", MaskDiagnosis("Hypertension stage 2"))
	assert.Equal(t, "Diabetes", MaskDiagnosis("Diabetes"))
	assert.Equal(t, DiagnosisPlaceholder, MaskDiagnosis(""))
}

func TestValidators(t *testing.T) {
	t.Run("contact", func(t *testing.T) {
		assert.True(t, ValidContact("+923001234567"))
		assert.True(t, ValidContact("03001234567"))
		assert.False(t, ValidContact("123"))
		assert.False(t, ValidContact("0300-123-4567"))
		assert.False(t, ValidContact(""))
	})

	t.Run("email", func(t *testing.T) {
		assert.True(t, ValidEmail("jane.smith@email.com"))
		assert.True(t, ValidEmail("a+b@sub.domain.co"))
		assert.False(t, ValidEmail("jane@"))
		assert.False(t, ValidEmail("@email.com"))
		assert.False(t, ValidEmail("jane@email"))
	})
}

func TestSanitize(t *testing.T) {
	t.Run("strips unsafe characters", func(t *testing.T) {
		assert.Equal(t, "robert drop table", Sanitize(`robert'; drop table"\`))
	})

	t.Run("bounds length", func(t *testing.T) {
		long := strings.Repeat("a", DetailMaxLen+100)
		assert.Len(t, Sanitize(long), DetailMaxLen)
	})

	t.Run("leaves clean text untouched", func(t *testing.T) {
		assert.Equal(t, "viewed record", Sanitize("viewed record"))
	})
}
