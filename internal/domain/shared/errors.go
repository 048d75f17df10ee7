package shared

import "fmt"

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrRegisterClosed      = NewDomainError("REGISTER_CLOSED", "Register must be open before issuing invoices")
	ErrRegisterAlreadyOpen = NewDomainError("REGISTER_ALREADY_OPEN", "A register session is already open for this tenant")
	ErrRegisterNotOpen     = NewDomainError("REGISTER_NOT_OPEN", "No register session is open for this tenant")
	ErrInvoiceNotEditable  = NewDomainError("INVOICE_NOT_EDITABLE", "Invoice is not in an editable state")
	ErrBalanceExhausted    = NewDomainError("BALANCE_EXHAUSTED", "Invoice balance has already been fully credited")
	ErrConcurrencyTimeout  = NewDomainError("CONCURRENCY_TIMEOUT", "Lock wait exceeded, retry the operation")
	ErrCounterMissing      = NewDomainError("COUNTER_MISSING", "Sequence counter row is missing for this tenant")
)

// ProvisionError reports a failed partition provisioning attempt.
// Provisioning is all-or-nothing: when this error is returned no partition
// object created during the attempt survives.
type ProvisionError struct {
	TenantID int64
	Cause    error
}

// Error implements the error interface
func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning partition for tenant %d failed: %v", e.TenantID, e.Cause)
}

// Unwrap exposes the underlying cause
func (e *ProvisionError) Unwrap() error {
	return e.Cause
}

// NewProvisionError creates a ProvisionError wrapping cause
func NewProvisionError(tenantID int64, cause error) *ProvisionError {
	return &ProvisionError{TenantID: tenantID, Cause: cause}
}
