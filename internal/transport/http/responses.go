package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "medivault/pkg/domain-errors"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError centralizes domain-error translation to HTTP responses. Only the
// code and message cross the boundary; wrapped causes stay inside.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeAuthenticationFailed:
		status = http.StatusUnauthorized
	case dErrors.CodeAuthorizationDenied:
		status = http.StatusForbidden
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeAuditUnavailable:
		status = http.StatusServiceUnavailable
	case dErrors.CodeDecryptionFailed:
		// Never rendered per field; reaching here means a systemic failure.
		status = http.StatusInternalServerError
	}

	message := "internal error"
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: string(code), Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
