package dto

import "net/http"

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeRegisterClosed      = "ERR_REGISTER_CLOSED"
	ErrCodeRegisterAlreadyOpen = "ERR_REGISTER_ALREADY_OPEN"
	ErrCodeRegisterNotOpen     = "ERR_REGISTER_NOT_OPEN"
	ErrCodeInvoiceNotEditable  = "ERR_INVOICE_NOT_EDITABLE"
	ErrCodeBalanceExhausted    = "ERR_BALANCE_EXHAUSTED"
	ErrCodeBalanceExceeded     = "ERR_BALANCE_EXCEEDED"
	ErrCodeConcurrencyTimeout  = "ERR_CONCURRENCY_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity, except conflicts
	// with concurrent state which map to 409
	ErrCodeRegisterClosed:      http.StatusUnprocessableEntity,
	ErrCodeRegisterAlreadyOpen: http.StatusConflict,
	ErrCodeRegisterNotOpen:     http.StatusConflict,
	ErrCodeInvoiceNotEditable:  http.StatusUnprocessableEntity,
	ErrCodeBalanceExhausted:    http.StatusUnprocessableEntity,
	ErrCodeBalanceExceeded:     http.StatusUnprocessableEntity,
	ErrCodeConcurrencyTimeout:  http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes. Domain
// validation codes not listed here fall through to ERR_INVALID_INPUT.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"REGISTER_CLOSED":       ErrCodeRegisterClosed,
	"REGISTER_ALREADY_OPEN": ErrCodeRegisterAlreadyOpen,
	"REGISTER_NOT_OPEN":     ErrCodeRegisterNotOpen,
	"INVOICE_NOT_EDITABLE":  ErrCodeInvoiceNotEditable,
	"BALANCE_EXHAUSTED":     ErrCodeBalanceExhausted,
	"BALANCE_EXCEEDED":      ErrCodeBalanceExceeded,
	"CONCURRENCY_TIMEOUT":   ErrCodeConcurrencyTimeout,
	"COUNTER_MISSING":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format. Codes
// already in the API format are returned as-is; anything else is treated as
// a validation failure.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInvalidInput
}
