package api

import (
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/samcharles93/twixread/internal/cfl"
	"github.com/samcharles93/twixread/internal/twix"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps a conversion error to an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, twix.ErrFormatMismatch),
		errors.Is(err, twix.ErrShortBlock),
		errors.Is(err, cfl.ErrOutOfBounds),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusUnprocessableEntity, "conversion_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
