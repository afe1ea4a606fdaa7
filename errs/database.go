package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrDatabaseQuery             = errors.New("database query failed")
)

// NewDatabaseError classifies a record-store failure. Constraint and
// existence failures keep their 4xx meaning; everything else is reported as
// a retryable 503 whose cause is kept for logging only.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	if cause != nil {
		errStr := strings.ToLower(cause.Error())
		switch {
		case errors.Is(cause, ErrUniqueConstraintViolation),
			strings.Contains(errStr, "duplicate key"),
			strings.Contains(errStr, "unique constraint"):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s already exists: %w", entity, ErrConflict),
				Details:    details,
				Cause:      cause,
			}
		case errors.Is(cause, ErrNotFound), strings.Contains(errStr, "record not found"):
			return &ApiErr{
				StatusCode: http.StatusNotFound,
				err:        fmt.Errorf("%s %w", entity, ErrNotFound),
				Cause:      cause,
			}
		}
	}

	wrapped := ErrDatabaseQuery
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrDatabaseQuery, cause)
	}
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    details,
		Cause:      wrapped,
	}
}
