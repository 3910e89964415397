// Package datasource provides comparison record sources for ingestion.
package datasource

import (
	"context"
	"fmt"
	"time"
)

// ComparisonSource defines the interface for fetching pairwise comparison
// records from an external provider
type ComparisonSource interface {
	// FetchComparisons retrieves comparison records observed within the date range
	FetchComparisons(ctx context.Context, startDate, endDate time.Time) ([]ComparisonRecord, error)

	// Name returns the name of the source
	Name() string

	// Dataset returns the dataset name records from this source belong to
	Dataset() string

	// IsEnabled returns whether this source is currently enabled
	IsEnabled() bool
}

// ComparisonRecord represents a normalized comparison from any source
type ComparisonRecord struct {
	OptionA    string    `json:"option_a"`
	OptionB    string    `json:"option_b"`
	Chosen     string    `json:"chosen"`
	ObservedAt time.Time `json:"observed_at"`
}

// Error codes for source failures
const (
	ErrCodeNetworkError = "network_error"
	ErrCodeParseError   = "parse_error"
	ErrCodeDisabled     = "disabled"
)

// DataSourceError wraps a failure from a specific source
type DataSourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Source, e.Code, e.Message)
}

// Unwrap exposes the wrapped error
func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError creates a new source error
func NewDataSourceError(source, code, message string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Code: code, Message: message, Err: err}
}
