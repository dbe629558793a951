package apierr

import (
	"errors"
	"fmt"
	"net/http"

	perrors "github.com/yungbote/spacekeeper-backend/internal/pkg/errors"
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

func BadRequest(code string, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf("%w: %s", perrors.ErrInvalidArgument, fmt.Sprintf(format, args...)))
}

func NotFound(code string, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf("%w: %s", perrors.ErrNotFound, fmt.Sprintf(format, args...)))
}

func Conflict(code string, format string, args ...any) *Error {
	return New(http.StatusConflict, code, fmt.Errorf("%w: %s", perrors.ErrConflict, fmt.Sprintf(format, args...)))
}

func Unauthorized(code string, format string, args ...any) *Error {
	return New(http.StatusUnauthorized, code, fmt.Errorf("%w: %s", perrors.ErrUnauthorized, fmt.Sprintf(format, args...)))
}

func TooLarge(code string, format string, args ...any) *Error {
	return New(http.StatusRequestEntityTooLarge, code, fmt.Errorf("%w: %s", perrors.ErrTooLarge, fmt.Sprintf(format, args...)))
}

// Resolve maps err onto an HTTP status and code. An *Error anywhere in the
// chain wins; otherwise the package sentinels decide after database errors
// are classified, and everything else is a 500 with fallbackCode.
func Resolve(err error, fallbackCode string) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := ae.Code
		if code == "" {
			code = fallbackCode
		}
		return status, code
	}
	err = perrors.FromDB(err)
	switch {
	case errors.Is(err, perrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, perrors.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, perrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, perrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, perrors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	}
	return http.StatusInternalServerError, fallbackCode
}
