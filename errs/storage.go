package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Storage & Record-Store Errors
var (
	ErrNotFound          = errors.New("not found")
	ErrStorageRead       = errors.New("record store read failed")
	ErrStorageWrite      = errors.New("record store write failed")
	ErrStorageCorruption = errors.New("record store document corrupted")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewStorageError wraps a backend failure with details about the operation.
// A "not found" response from the remote backend is a valid empty result and
// must be mapped by the backend before reaching this constructor.
func NewStorageError(operation, document string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, document)

	if cause != nil {
		errStr := cause.Error()
		switch {
		case strings.Contains(errStr, "connection"):
			return &ApiErr{
				StatusCode: http.StatusServiceUnavailable,
				err:        ErrStorageRead,
				Details:    "Unable to reach storage backend",
				Cause:      cause,
			}
		case strings.Contains(errStr, "unexpected end of JSON") ||
			strings.Contains(errStr, "invalid character"):
			return &ApiErr{
				StatusCode: http.StatusInternalServerError,
				err:        ErrStorageCorruption,
				Details:    details,
				Cause:      cause,
			}
		}
	}

	sentinel := ErrStorageRead
	if operation == "persist" || operation == "write" {
		sentinel = ErrStorageWrite
	}
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        sentinel,
		Details:    details,
		Cause:      cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageRead) ||
		errors.Is(err, ErrStorageWrite) ||
		errors.Is(err, ErrStorageCorruption)
}
