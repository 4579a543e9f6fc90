package ocr

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by backend constructors or calls when the
// underlying recognizer cannot run in this build or environment.
var ErrUnavailable = errors.New("ocr backend unavailable")

// UnknownEngineError reports that no recognizer is registered for a field's
// resolved language and no hybrid fallback exists.
type UnknownEngineError struct {
	Language Language
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("no OCR engine available for language %q", e.Language)
}

// BackendError wraps an opaque failure surfaced by a recognition backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ocr backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
