package cli

import (
	"errors"
	"io"

	"github.com/devaiflow/daf/internal/safety"
	"github.com/devaiflow/daf/internal/sessionmgr"
	"github.com/devaiflow/daf/internal/tracker"
)

// Exit codes, matching every failure kind a command can surface: success,
// generic failure, user-cancel, safety-guard refusal, tracker auth
// failure, tracker not-found, tracker validation.
const (
	ExitSuccess       = 0
	ExitGeneric       = 1
	ExitUserCancel    = 2
	ExitSafetyRefusal = 3
	ExitAuthFailure   = 4
	ExitNotFound      = 5
	ExitValidation    = 6
)

// ErrorDetail is the "error" object inside a --json error envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the top-level --json shape for a failed command:
// {"success":false,"error":{"code","message","details?"}}.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ClassifyError maps err to its exit code and envelope code/details,
// walking the Unwrap chain so it works transparently through SilentError.
// Anything that doesn't match a known domain error is exit 1, "ERROR".
func ClassifyError(err error) (code int, errCode string, details any) {
	var refused *safety.RefusedError
	if errors.As(err, &refused) {
		return ExitSafetyRefusal, "SAFETY_REFUSAL", nil
	}

	var authErr *tracker.AuthError
	if errors.As(err, &authErr) {
		return ExitAuthFailure, "AUTH_ERROR", nil
	}

	var notFound *tracker.NotFoundError
	if errors.As(err, &notFound) {
		return ExitNotFound, "NOT_FOUND", nil
	}
	var sessNotFound *sessionmgr.ErrNotFound
	if errors.As(err, &sessNotFound) {
		return ExitNotFound, "NOT_FOUND", nil
	}

	var validationErr *tracker.ValidationError
	if errors.As(err, &validationErr) {
		return ExitValidation, "VALIDATION_ERROR", map[string]any{"field_errors": validationErr.Fields}
	}

	var declined *sessionmgr.ErrDeclined
	if errors.As(err, &declined) {
		return ExitUserCancel, "CANCELLED", nil
	}

	return ExitGeneric, "ERROR", nil
}

// errorEnvelope builds the --json error envelope for err.
func errorEnvelope(err error) ErrorEnvelope {
	_, code, details := ClassifyError(err)
	return ErrorEnvelope{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: err.Error(),
			Details: details,
		},
	}
}

// WriteErrorEnvelope prints the --json error envelope for err to w, for
// main to call once it has decided the command ultimately failed.
func WriteErrorEnvelope(w io.Writer, err error) error {
	return printJSON(w, errorEnvelope(err))
}
