package pipeline

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// UploadError means the document never reached the file store. Status and
// Body are set when the store answered with a non-2xx response.
type UploadError struct {
	Status int
	Body   string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upload document: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("upload document: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ExtractionAPIError means the primary extraction call failed.
type ExtractionAPIError struct {
	Status int
	Body   string
	Err    error
}

func (e *ExtractionAPIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("extract fields: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("extract fields: %v", e.Err)
}

func (e *ExtractionAPIError) Unwrap() error { return e.Err }

func httpDetails(err error) (int, string) {
	var he *llm.HTTPError
	if errors.As(err, &he) {
		return he.Status, he.Body
	}
	return 0, ""
}

func newUploadError(err error) *UploadError {
	status, body := httpDetails(err)
	return &UploadError{Status: status, Body: body, Err: err}
}

func newExtractionAPIError(err error) *ExtractionAPIError {
	status, body := httpDetails(err)
	return &ExtractionAPIError{Status: status, Body: body, Err: err}
}
