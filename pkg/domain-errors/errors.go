// Package errors provides coded domain errors. Services return these so the
// transport layer can map failures to user-facing responses without inspecting
// error strings, and so tests can assert on codes rather than messages.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure. Codes are part of the module's
// contract with callers; messages are not.
type Code string

const (
	// CodeInvalidInput marks unparseable or out-of-range caller input.
	CodeInvalidInput Code = "invalid_input"

	// CodeAuthenticationFailed marks a credential mismatch. Always generic:
	// it never says which factor failed.
	CodeAuthenticationFailed Code = "authentication_failed"

	// CodeAuthorizationDenied marks a policy or consent refusal. Fail closed:
	// carriers of this code must not leak what was being protected.
	CodeAuthorizationDenied Code = "authorization_denied"

	// CodeDecryptionFailed marks an authentication-tag mismatch or a malformed
	// ciphertext envelope. Fatal for the affected value.
	CodeDecryptionFailed Code = "decryption_failed"

	// CodeAuditUnavailable marks a failed audit append. The action that
	// triggered the append must be aborted.
	CodeAuditUnavailable Code = "audit_unavailable"

	// CodeNotFound marks a missing entity surfaced to the domain layer.
	CodeNotFound Code = "not_found"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. The wrapped cause, if any, stays internal;
// only Code and Message are intended for callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded domain error around a cause. The cause is preserved for
// errors.Is/As chains but should never be rendered to end users.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
