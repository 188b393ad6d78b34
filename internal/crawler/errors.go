package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/williampepple1/catalog-crawler/internal/browser"
)

// BootstrapError indicates the root page never loaded. It is always fatal.
type BootstrapError struct {
	URL string
	Err error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.URL, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// ExtractionError indicates a product page could not be turned into a record.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ItemError is a recovered per-product failure kept for observability.
type ItemError struct {
	URL   string `json:"url"`
	Phase string `json:"phase"`
	Type  string `json:"type"`
	Err   string `json:"error"`
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout *browser.NavigationTimeout
	if errors.As(err, &timeout) {
		return "navigation_timeout"
	}
	var nav *browser.NavigationError
	if errors.As(err, &nav) {
		return "navigation"
	}
	var extraction *ExtractionError
	if errors.As(err, &extraction) {
		return "extraction"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "other"
}
