// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrNoPriorPeriod       = errors.New("no prior period within tolerance")
	ErrInsufficientValues  = errors.New("insufficient non-null values")
	ErrNonPositiveMean     = errors.New("non-positive mean")
	ErrZeroDenominator     = errors.New("zero denominator")
	ErrHistoryUnavailable  = errors.New("history unavailable")
	ErrTickerNotFound      = errors.New("ticker not found")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrNoSnapshot          = errors.New("no snapshot available")
	ErrDatabaseError       = errors.New("database error")
)

// ParseError represents a failure to parse a scraped field value.
// Callers in the comparison engine treat any ParseError as "value
// absent" rather than propagating it.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error [%s] %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse error [%s] %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, value string, err error) *ParseError {
	return &ParseError{Field: field, Value: value, Err: err}
}

// ScrapeError represents a failure collecting data from an issuer site.
type ScrapeError struct {
	Source string
	URL    string
	Err    error
}

func (e *ScrapeError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("scrape error [%s] %s: %v", e.Source, e.URL, e.Err)
	}
	return fmt.Sprintf("scrape error [%s]: %v", e.Source, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(source, url string, err error) *ScrapeError {
	return &ScrapeError{Source: source, URL: url, Err: err}
}

// StoreError represents a persistence failure in the history store or
// the run recorder.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("store error [%s] %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, path string, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
