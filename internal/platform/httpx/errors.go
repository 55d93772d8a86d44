package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alima/supply/internal/shared"
)

// Error codes returned to clients.
const (
	CodeStructural = "STRUCTURAL_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeNotFound   = "NOT_FOUND"
	CodeUnexpected = "UNEXPECTED_ERROR"
)

const unexpectedMsg = "Ocurrió un error inesperado, intenta de nuevo más tarde"

// Classify maps an error to its HTTP status and client code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrStructural):
		return http.StatusUnprocessableEntity, CodeStructural
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeUnexpected
	}
}

// RespondError writes the error envelope for err. Unclassified errors are
// logged and answered with a generic message.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := Classify(err)
	msg := err.Error()
	if code == CodeUnexpected {
		if logger != nil {
			logger.Error("unexpected error", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		msg = unexpectedMsg
	}
	Fail(w, status, code, msg)
}
