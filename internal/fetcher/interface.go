// Package fetcher defines the quote-source adapter contract. One
// adapter exists per external provider; each turns a provider-specific
// payload into a canonical QuoteSnapshot or fails with a SourceError.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marketpulse/pulse/internal/core"
)

// Timeout is the per-request budget for every provider call.
const Timeout = 5 * time.Second

// Fetcher is a single external quote provider.
type Fetcher interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// FetchQuote resolves one validated snapshot for the instrument.
	// Any failure — transport, status, decode, validation — is
	// returned as a *SourceError.
	FetchQuote(ctx context.Context, inst core.Instrument) (*core.QuoteSnapshot, error)
}

// SourceError wraps a provider failure so provider-specific error
// types never cross the cascade boundary.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Failf builds a SourceError from a format string.
func Failf(source, format string, args ...any) error {
	return &SourceError{Source: source, Err: fmt.Errorf(format, args...)}
}

// Fail wraps an existing error as a SourceError.
func Fail(source string, err error) error {
	return &SourceError{Source: source, Err: err}
}

// NewClient returns the HTTP client all adapters share the settings of.
func NewClient() *http.Client {
	return &http.Client{Timeout: Timeout}
}

// Validate applies the acceptance predicate every snapshot must pass
// before entering the cache.
func Validate(source string, q *core.QuoteSnapshot) error {
	if !q.IsValid() {
		return Failf(source, "quote failed validation: %+v", q)
	}
	return nil
}
