package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ConfirmErrorBadInput          = "CONFIRM_BAD_INPUT"
	ConfirmErrorUnauthenticated   = "CONFIRM_UNAUTHENTICATED"
	ConfirmErrorForbidden         = "CONFIRM_FORBIDDEN"
	ConfirmErrorNotFound          = "CONFIRM_NOT_FOUND"
	ConfirmErrorTokenInvalid      = "CONFIRM_TOKEN_INVALID"
	ConfirmErrorTokenUsed         = "CONFIRM_TOKEN_USED"
	ConfirmErrorTokenExpired      = "CONFIRM_TOKEN_EXPIRED"
	ConfirmErrorUploadTooLarge    = "CONFIRM_UPLOAD_TOO_LARGE"
	ConfirmErrorUploadUnsupported = "CONFIRM_UPLOAD_UNSUPPORTED"
	ConfirmErrorInternal          = "CONFIRM_INTERNAL_ERROR"
)

var (
	ErrPrincipalRequired = errors.New("core: principal id is required")

	// ErrUnauthenticated covers absent, malformed and rejected bearer
	// credentials uniformly.
	ErrUnauthenticated = errors.New("core: credential rejected")

	// ErrNotOwner is returned when an authenticated principal targets a
	// transaction owned by someone else.
	ErrNotOwner = errors.New("core: principal does not own transaction")

	ErrTransactionNotFound = errors.New("core: transaction not found")
	ErrProfileNotFound     = errors.New("core: profile not found")

	// ErrTokenInvalid is the uniform rejection for structural and
	// signature failures, and for commitments no row matches. Callers
	// must not learn which layer rejected the token. Expiry of a
	// well-signed token is the one distinguished outcome, ErrTokenExpired.
	ErrTokenInvalid = errors.New("core: confirmation token is invalid")
	ErrTokenUsed    = errors.New("core: confirmation token already used")
	ErrTokenExpired = errors.New("core: confirmation token expired")

	ErrUploadTooLarge    = errors.New("core: upload exceeds size limit")
	ErrUploadUnsupported = errors.New("core: upload content type is not allowed")
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

func errInternal(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithTextCode(ConfirmErrorInternal).
		WithCode(http.StatusInternalServerError)
}

func errBadInput(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(ConfirmErrorBadInput).
		WithCode(http.StatusBadRequest)
}

// AsConfirmError normalizes any error into the confirmation error envelope
// with a category, HTTP status code, and text code filled in.
func AsConfirmError(err error) *goerrors.Error {
	return confirmErrorMapper(err)
}

func confirmErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureConfirmErrorEnvelope(richErr)
	}

	var converter interface{ ToServiceError() *goerrors.Error }
	if errors.As(err, &converter) {
		return ensureConfirmErrorEnvelope(converter.ToServiceError())
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return newConfirmError(err.Error(), goerrors.CategoryAuth, ConfirmErrorUnauthenticated)
	case errors.Is(err, ErrNotOwner):
		return newConfirmError(err.Error(), goerrors.CategoryAuthz, ConfirmErrorForbidden)
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrProfileNotFound):
		return newConfirmError(err.Error(), goerrors.CategoryNotFound, ConfirmErrorNotFound)
	case errors.Is(err, ErrTokenInvalid):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorTokenInvalid)
	case errors.Is(err, ErrTokenUsed):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorTokenUsed)
	case errors.Is(err, ErrTokenExpired):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorTokenExpired)
	case errors.Is(err, ErrUploadTooLarge):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorUploadTooLarge)
	case errors.Is(err, ErrUploadUnsupported):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorUploadUnsupported)
	case errors.Is(err, ErrPrincipalRequired):
		return newConfirmError(err.Error(), goerrors.CategoryAuth, ConfirmErrorUnauthenticated)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "credential rejected"):
		return newConfirmError(err.Error(), goerrors.CategoryAuth, ConfirmErrorUnauthenticated)
	case strings.Contains(msg, "not found"):
		return newConfirmError(err.Error(), goerrors.CategoryNotFound, ConfirmErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "missing"):
		return newConfirmError(err.Error(), goerrors.CategoryBadInput, ConfirmErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureConfirmErrorEnvelope(mapped)
}

func newConfirmError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureConfirmErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureConfirmErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = confirmHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultConfirmTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultConfirmTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ConfirmErrorBadInput
	case goerrors.CategoryNotFound:
		return ConfirmErrorNotFound
	case goerrors.CategoryAuth:
		return ConfirmErrorUnauthenticated
	case goerrors.CategoryAuthz:
		return ConfirmErrorForbidden
	default:
		return ConfirmErrorInternal
	}
}

func confirmHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
