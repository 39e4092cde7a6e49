// Package apperr defines the domain error taxonomy. Every user-visible
// failure carries a stable code and an HTTP status so handlers and CLI
// commands can map errors without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code is a stable, user-visible error identifier.
type Code string

const (
	CodeDataFormat       Code = "DATA_FORMAT"
	CodeNotLoaded        Code = "NOT_LOADED"
	CodeVendorNotFound   Code = "VENDOR_NOT_FOUND"
	CodeNoDataInRange    Code = "NO_DATA_IN_RANGE"
	CodeInvalidDateRange Code = "INVALID_DATE_RANGE"
	CodeQueryParse       Code = "QUERY_PARSE"
	CodeQueryTimeout     Code = "QUERY_TIMEOUT"
	CodeUnsupportedQuery Code = "UNSUPPORTED_QUERY"
	CodeFileTooLarge     Code = "FILE_TOO_LARGE"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error is a terminal domain error. None of these are retried internally;
// they propagate to the boundary that serializes them.
type Error struct {
	Code    Code   `json:"error"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// From extracts an *Error from err's chain. Unrecognized errors map to a
// generic internal error so no failure is silently swallowed.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "an unexpected error occurred",
	}
}

// DataFormat reports a malformed input dataset. The load is rejected
// wholesale; no partial state is visible.
func DataFormat(detail string) *Error {
	return &Error{
		Code:    CodeDataFormat,
		Status:  http.StatusBadRequest,
		Message: "dataset is malformed",
		Detail:  detail,
	}
}

// NotLoaded reports access to the dataset before the first successful load.
func NotLoaded() *Error {
	return &Error{
		Code:    CodeNotLoaded,
		Status:  http.StatusServiceUnavailable,
		Message: "dataset has not been loaded",
	}
}

// VendorNotFound reports a vendor with zero matching rows.
func VendorNotFound(vendor string, available []string) *Error {
	e := &Error{
		Code:    CodeVendorNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("vendor %q not found", vendor),
	}
	if len(available) > 0 {
		e.Detail = "available vendors: " + strings.Join(available, ", ")
	}
	return e
}

// NoDataInRange reports a date-range filter that matched zero rows.
func NoDataInRange(start, end string) *Error {
	return &Error{
		Code:    CodeNoDataInRange,
		Status:  http.StatusNotFound,
		Message: "no data in the requested date range",
		Detail:  fmt.Sprintf("no rows between %s and %s", start, end),
	}
}

// InvalidDateRange reports start > end.
func InvalidDateRange(start, end string) *Error {
	return &Error{
		Code:    CodeInvalidDateRange,
		Status:  http.StatusBadRequest,
		Message: "invalid date range",
		Detail:  fmt.Sprintf("start_date %s is after end_date %s", start, end),
	}
}

// QueryParse reports a failed or schema-violating language-model response.
func QueryParse(detail string) *Error {
	return &Error{
		Code:    CodeQueryParse,
		Status:  http.StatusBadGateway,
		Message: "could not parse the question",
		Detail:  detail,
	}
}

// QueryTimeout reports a language-model call that exceeded its bound.
func QueryTimeout(detail string) *Error {
	return &Error{
		Code:    CodeQueryTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: "question parsing timed out",
		Detail:  detail,
	}
}

// UnsupportedQuery reports a recognized-but-unhandleable intent or missing
// required entities.
func UnsupportedQuery(detail string) *Error {
	return &Error{
		Code:    CodeUnsupportedQuery,
		Status:  http.StatusUnprocessableEntity,
		Message: "the question is not supported",
		Detail:  detail,
	}
}

// Validation reports invalid request input outside the dataset itself.
func Validation(message, detail string) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: message,
		Detail:  detail,
	}
}

// FileTooLarge reports an upload exceeding the configured size cap.
func FileTooLarge(maxBytes int64) *Error {
	return &Error{
		Code:    CodeFileTooLarge,
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("file too large, maximum is %d bytes", maxBytes),
	}
}
