package domain

import dErrors "medivault/pkg/domain-errors"

// FieldCategory classifies a record field for visibility decisions. The access
// policy is a total function over Roles x Categories, so this set is closed:
// adding a category here forces a matching policy column at startup.
type FieldCategory string

const (
	CategoryIdentity    FieldCategory = "identity"    // patient name
	CategoryContact     FieldCategory = "contact"     // phone numbers
	CategoryEmail       FieldCategory = "email"       // email addresses
	CategoryAddress     FieldCategory = "address"     // street addresses
	CategoryDemographic FieldCategory = "demographic" // date of birth, blood group
	CategoryMedical     FieldCategory = "medical"     // diagnosis, treatment notes
	CategoryMeta        FieldCategory = "meta"        // bookkeeping timestamps, flags
)

// Categories lists every supported field category.
var Categories = []FieldCategory{
	CategoryIdentity,
	CategoryContact,
	CategoryEmail,
	CategoryAddress,
	CategoryDemographic,
	CategoryMedical,
	CategoryMeta,
}

var validCategories = map[FieldCategory]bool{
	CategoryIdentity:    true,
	CategoryContact:     true,
	CategoryEmail:       true,
	CategoryAddress:     true,
	CategoryDemographic: true,
	CategoryMedical:     true,
	CategoryMeta:        true,
}

// ParseFieldCategory constructs a FieldCategory from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseFieldCategory(s string) (FieldCategory, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "field category cannot be empty")
	}
	c := FieldCategory(s)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid field category")
	}
	return c, nil
}

// IsValid checks if the category is one of the supported enum values.
func (c FieldCategory) IsValid() bool {
	return validCategories[c]
}

// String returns the string representation of the category.
func (c FieldCategory) String() string {
	return string(c)
}

// FieldTag marks how a field's value is held at rest.
type FieldTag string

const (
	// TagPlain values are stored as-is.
	TagPlain FieldTag = "plain"
	// TagEncrypted values are stored as ciphertext envelopes and require the
	// codec key to display.
	TagEncrypted FieldTag = "encrypted"
	// TagDerived values are irreversible transforms (pseudonyms, masks) of
	// identifying data whose pre-image has been discarded.
	TagDerived FieldTag = "derived"
)
