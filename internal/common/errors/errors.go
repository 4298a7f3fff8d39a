// Package errors provides standardized error handling for BPMN workflow
// integration of the body-scan workers.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request-level errors: no computation is attempted.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Catalog access errors.
	ErrCodeCatalogConnectionFailed ErrorCode = "CATALOG_CONNECTION_FAILED"
	ErrCodeCatalogQueryFailed      ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogQueryTimeout     ErrorCode = "CATALOG_QUERY_TIMEOUT"

	// Both the catalog-backed mapping and the hardcoded fallback failed.
	ErrCodeMappingUnavailable ErrorCode = "MAPPING_UNAVAILABLE"

	// NO_MATCH_FOUND is a business outcome, not a fault. It is never thrown
	// as a BPMN error; workers complete the job with an empty result.
	ErrCodeNoMatchFound ErrorCode = "NO_MATCH_FOUND"

	// ENVELOPE_INTEGRITY_CORRECTED is a warning surfaced alongside a
	// successful response after self-healing.
	ErrCodeEnvelopeIntegrityCorrected ErrorCode = "ENVELOPE_INTEGRITY_CORRECTED"

	// ARCHETYPES_NOT_FOUND: an explicit archetype id list resolved to nothing.
	ErrCodeArchetypesNotFound ErrorCode = "ARCHETYPES_NOT_FOUND"

	// MATCHING_FAILED covers anything unclassified; the response body stays
	// well-formed and empty so callers can rely on a stable schema.
	ErrCodeMatchingFailed ErrorCode = "MATCHING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogConnectionFailedError creates a retryable connection error.
func NewCatalogConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogConnectionFailed,
		Message:   "Catalog database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a retryable query error.
func NewCatalogQueryFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Catalog query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryTimeoutError creates a retryable timeout error.
func NewCatalogQueryTimeoutError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryTimeout,
		Message:   "Catalog query timeout",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMappingUnavailableError signals that neither the catalog nor the
// hardcoded fallback could produce a gender mapping. Fatal for the request.
func NewMappingUnavailableError(sexCode string, err error) *StandardError {
	details := fmt.Sprintf("sexCode: %s", sexCode)
	if err != nil {
		details = fmt.Sprintf("%s, catalogError: %s", details, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeMappingUnavailable,
		Message:   "No gender mapping available from catalog or fallback",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchetypesNotFoundError creates a non-retryable lookup error.
func NewArchetypesNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchetypesNotFound,
		Message:   "No archetypes found for the requested ids",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchingFailedError wraps an unclassified failure.
func NewMatchingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchingFailed,
		Message:   "Unexpected matching engine failure",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogConnectionFailed,
		ErrCodeCatalogQueryFailed:
		return 3

	case ErrCodeCatalogQueryTimeout:
		return 2

	default:
		return 0 // validation, mapping and business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// ConvertToBPMNError converts a StandardError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}
