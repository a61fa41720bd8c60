package models

import "fmt"

// NotFoundError means the data source returned no history for the ticker.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no data found for ticker %s", e.Ticker)
}

// UpstreamError means fetching the ticker's history failed.
type UpstreamError struct {
	Ticker string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetch history for %s: %v", e.Ticker, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// InsufficientDataError means a series is too short for the requested computation.
type InsufficientDataError struct {
	Symbol string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data (%d bars, need %d)", e.Symbol, e.Have, e.Need)
}
