package timecamp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/timecamphq/peoplesync/internal/httpclient"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrRateLimited      = errors.New("rate limited")
	ErrValidation       = errors.New("validation failed")
)

// checkError maps a failed call onto the adapter's error taxonomy.
// Transport failures pass through wrapped.
func checkError(op string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *httpclient.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch statusErr.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w: %s", op, ErrPermissionDenied, truncate(statusErr.Body))
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w: %s", op, ErrConflict, truncate(statusErr.Body))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w: %s", op, ErrValidation, truncate(statusErr.Body))
	}

	return fmt.Errorf("%s: %w", op, statusErr)
}

// IsFatal reports whether an error must abort the whole run rather
// than skip one user. Only authentication failures qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func truncate(body []byte) string {
	const n = 200
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
