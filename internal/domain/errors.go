package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyCatalog is returned when a nearest-location lookup runs against a
// catalog with no records.
var ErrEmptyCatalog = errors.New("stock catalog is empty")

// MalformedDataError reports a missing or invalid cell in the stock source.
// Row is 1-based and counts data rows only (the header is row 0).
type MalformedDataError struct {
	Row    int
	Column string
	Reason string
}

func (e *MalformedDataError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed stock data: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed stock data: row %d, column %q: %s", e.Row, e.Column, e.Reason)
}

// InvalidQueryError reports a query coordinate that is missing or out of range.
type InvalidQueryError struct {
	Coordinate Coordinate
	Reason     string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query coordinate (%g, %g): %s", e.Coordinate.Lat, e.Coordinate.Lon, e.Reason)
}

// UnknownResourceError reports an allocation against a resource type the
// record does not track.
type UnknownResourceError struct {
	Resource string
	Amount   float64
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q (requested %g)", e.Resource, e.Amount)
}

// InvalidAmountError reports a requested amount that is negative, fractional
// or not a number. Amount is NaN when the input was not numeric at all.
type InvalidAmountError struct {
	Resource string
	Amount   float64
}

func (e *InvalidAmountError) Error() string {
	if math.IsNaN(e.Amount) {
		return fmt.Sprintf("invalid amount for %q: not a number", e.Resource)
	}
	return fmt.Sprintf("invalid amount for %q: %g is not a non-negative integer", e.Resource, e.Amount)
}

// InsufficientStockError reports a request for more than is available.
type InsufficientStockError struct {
	Resource  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Resource, e.Requested, e.Available)
}

// PredictionServiceError reports a failed or unparseable scoring response.
// StatusCode is zero when the request never got a response.
type PredictionServiceError struct {
	StatusCode int
	Reason     string
}

func (e *PredictionServiceError) Error() string {
	if e.StatusCode == 0 {
		return "prediction service: " + e.Reason
	}
	return fmt.Sprintf("prediction service: status %d: %s", e.StatusCode, e.Reason)
}

// AuthenticationError reports a failure to obtain an access token from the
// identity service.
type AuthenticationError struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode == 0 {
		return "authentication failed: " + e.Reason
	}
	return fmt.Sprintf("authentication failed: status %d: %s", e.StatusCode, e.Reason)
}
