// Package apperr defines the coded errors the service layer returns and the
// HTTP status each code maps to.
package apperr

import (
	"net/http"

	"github.com/samber/oops"
)

// Error codes.
const (
	CodeValidation      = "VALIDATION"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL"

	CodeMissingCredential        = "AUTH_MISSING_CREDENTIAL"
	CodeInvalidCredential        = "AUTH_INVALID_CREDENTIAL"
	CodeInvalidPayload           = "AUTH_INVALID_PAYLOAD"
	CodeUnexpectedPrincipalState = "AUTH_UNEXPECTED_PRINCIPAL_STATE"
)

// Messages shared by several call sites.
const (
	MsgForbidden      = "You are not authorized to perform this action."
	MsgInternal       = "Internal server error."
	MsgMissingToken   = "Access token is missing."
	MsgInvalidToken   = "Invalid or expired token."
	MsgInvalidPayload = "Invalid token payload."
	MsgInvalidAccess  = "Invalid access token."
	MsgUnexpectedType = "Unexpected user type."
)

// Validation reports a missing or malformed request field.
func Validation(msg string) error {
	return oops.Code(CodeValidation).Errorf("%s", msg)
}

// NotFound reports an absent record.
func NotFound(msg string) error {
	return oops.Code(CodeNotFound).Errorf("%s", msg)
}

// Unauthenticated reports a failed credential check (password, OTP, refresh token).
func Unauthenticated(msg string) error {
	return oops.Code(CodeUnauthenticated).Errorf("%s", msg)
}

// Forbidden reports an insufficient role.
func Forbidden() error {
	return oops.Code(CodeForbidden).Errorf("%s", MsgForbidden)
}

// QuotaExceeded reports a system-wide cardinality limit.
func QuotaExceeded(msg string) error {
	return oops.Code(CodeQuotaExceeded).Errorf("%s", msg)
}

// Conflict reports a uniqueness violation.
func Conflict(msg string) error {
	return oops.Code(CodeConflict).Errorf("%s", msg)
}

// Internal wraps an unexpected failure. The operation is kept as context for
// logging; clients only ever see MsgInternal.
func Internal(operation string, err error) error {
	return oops.Code(CodeInternal).With("operation", operation).Wrap(err)
}

// Gate failures.

func MissingCredential() error {
	return oops.Code(CodeMissingCredential).Errorf("%s", MsgMissingToken)
}

func InvalidCredential(msg string) error {
	return oops.Code(CodeInvalidCredential).Errorf("%s", msg)
}

func InvalidPayload() error {
	return oops.Code(CodeInvalidPayload).Errorf("%s", MsgInvalidPayload)
}

func UnexpectedPrincipalState() error {
	return oops.Code(CodeUnexpectedPrincipalState).Errorf("%s", MsgUnexpectedType)
}

// Code returns the code attached to err, or "" for uncoded errors.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code, ok := oopsErr.Code().(string); ok {
		return code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Status maps err to the HTTP status it should be reported with.
func Status(err error) int {
	switch Code(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated, CodeMissingCredential, CodeInvalidCredential, CodeInvalidPayload:
		return http.StatusUnauthorized
	case CodeForbidden, CodeQuotaExceeded:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Internal failures are
// never described to the client.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError && Code(err) != CodeUnexpectedPrincipalState {
		return MsgInternal
	}
	return err.Error()
}
