package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Media Pipeline & Collaborator Errors
var (
	ErrUploadFailed      = errors.New("asset upload failed")
	ErrProcessingFailed  = errors.New("media processing failed")
	ErrMissingCredential = errors.New("required credential not configured")
)

// NewUploadError reports a remote-store rejection or network failure while
// uploading asset bytes. Distinct from ProcessingError so callers can tell
// "the bytes never made it" apart from "the transform broke".
func NewUploadError(target string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUploadFailed,
		Details:    fmt.Sprintf("Failed to upload asset to %s", target),
		Cause:      cause,
	}
}

// NewProcessingError reports a local image/video transform failure.
func NewProcessingError(stage, filename string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrProcessingFailed,
		Details:    fmt.Sprintf("Failed to %s %s", stage, filename),
		Cause:      cause,
	}
}

// NewConfigurationError reports an absent external credential or setting that
// the selected storage mode requires.
func NewConfigurationError(names ...string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrMissingCredential,
		Details:    fmt.Sprintf("Missing required configuration: %v", names),
	}
}

func IsUpload(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}

func IsProcessing(err error) bool {
	return errors.Is(err, ErrProcessingFailed)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}
