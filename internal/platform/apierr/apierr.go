package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/batchcatalog-backend/internal/domain/catalog"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromCatalog classifies a core failure for the HTTP layer. Unknown errors
// map to 500 with the given fallback code.
func FromCatalog(err error, fallbackCode string) *Error {
	var ae *Error
	var ve *catalog.ValidationError
	var se *catalog.StructuralError
	var pe *catalog.ParseError
	var ioe *catalog.IOError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &ve):
		return New(http.StatusUnprocessableEntity, "validation_failed", err)
	case errors.As(err, &se):
		return New(http.StatusBadRequest, "invalid_path", err)
	case errors.Is(err, catalog.ErrNotConfirmed):
		return New(http.StatusConflict, "confirmation_required", err)
	case errors.Is(err, catalog.ErrNotFound):
		return New(http.StatusNotFound, "batch_not_found", err)
	case errors.Is(err, catalog.ErrSessionNotFound):
		return New(http.StatusNotFound, "session_not_found", err)
	case errors.As(err, &pe):
		return New(http.StatusUnprocessableEntity, "unreadable_workbook", err)
	case errors.As(err, &ioe):
		return New(http.StatusBadRequest, "unreadable_upload", err)
	default:
		return New(http.StatusInternalServerError, fallbackCode, err)
	}
}
