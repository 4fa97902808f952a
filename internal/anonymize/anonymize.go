// Package anonymize implements irreversible transforms and display masks for
// identifying fields.
//
// Nothing here exposes an inverse. Pseudonyms derive from the record
// identifier, never from the data being replaced, so two different names
// attached to the same record collapse to one stable pseudonym. Malformed
// input degrades to a fully masked placeholder instead of surfacing an error;
// the caller decides whether to log the degradation.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	id "medivault/pkg/domain"
)

const (
	// ContactPlaceholder is returned for contacts that cannot be masked.
	ContactPlaceholder = "XXX-XXX-XXXX"
	// EmailPlaceholder is returned for addresses that cannot be masked.
	EmailPlaceholder = "***@***"
	// AddressPlaceholder is returned when no city can be preserved.
	AddressPlaceholder = "*****"
	// DiagnosisPlaceholder fully masks a diagnosis.
	DiagnosisPlaceholder = "***CONFIDENTIAL***"

	pseudonymPrefix = "ANON_"
	// DetailMaxLen bounds free-text detail strings fed to the audit trail.
	DetailMaxLen = 500
)

var (
	nonDigit       = regexp.MustCompile(`\D`)
	contactPattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	unsafeRunes    = regexp.MustCompile(`[;'"\\]`)
)

// PseudonymFor returns the stable pseudonymous label for a record. The label
// is a fixed prefix plus a short digest of the record identifier; it carries
// no information about the name it replaces and cannot be inverted to the
// identifier from the label alone.
func PseudonymFor(recordID id.RecordID) string {
	sum := sha256.Sum256([]byte(recordID.String()))
	return pseudonymPrefix + strings.ToUpper(hex.EncodeToString(sum[:4]))
}

// MaskContact reveals only the last four digits of a phone number. Input that
// does not contain at least four digits degrades to the placeholder.
func MaskContact(contact string) string {
	digits := nonDigit.ReplaceAllString(contact, "")
	if len(digits) < 4 {
		return ContactPlaceholder
	}
	return "XXX-XXX-" + digits[len(digits)-4:]
}

// MaskEmail preserves the domain and the first rune of the local part.
// The remainder is a fixed-width mask so the output does not leak the local
// part's length. Malformed addresses degrade to the placeholder.
func MaskEmail(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 1 || at == len(address)-1 {
		return EmailPlaceholder
	}
	local, domain := address[:at], address[at+1:]
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + "***@" + domain
}

// MaskAddress keeps only the city (the segment after the last comma) and
// masks everything before it.
func MaskAddress(address string) string {
	if address == "" {
		return AddressPlaceholder
	}
	parts := strings.Split(address, ",")
	if len(parts) > 1 {
		city := strings.TrimSpace(parts[len(parts)-1])
		if city != "" {
			return AddressPlaceholder + ", " + city
		}
	}
	return AddressPlaceholder
}

// MaskDiagnosis partially masks a diagnosis, keeping only the leading word.
// Use DiagnosisPlaceholder directly when the policy calls for full masking.
func MaskDiagnosis(diagnosis string) string {
	if diagnosis == "" {
		return DiagnosisPlaceholder
	}
	words := strings.Fields(diagnosis)
	if len(words) > 1 {
		return words[0] + " ***"
	}
	return diagnosis
}

// ValidContact reports whether contact looks like a phone number with an
// optional country prefix.
func ValidContact(contact string) bool {
	return contactPattern.MatchString(contact)
}

// ValidEmail reports whether address looks like an email address.
func ValidEmail(address string) bool {
	return emailPattern.MatchString(address)
}

// Sanitize strips characters unsafe for downstream storage from free text and
// bounds its length. Audit detail strings pass through here before append.
func Sanitize(text string) string {
	cleaned := unsafeRunes.ReplaceAllString(text, "")
	if len(cleaned) > DetailMaxLen {
		cleaned = cleaned[:DetailMaxLen]
	}
	return cleaned
}
