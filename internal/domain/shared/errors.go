package shared

// DomainError represents a domain-level error
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
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")

	// ErrSystemBusy signals that a distributed lock on the target resource could
	// not be acquired. Callers should treat it as retryable, not as a fault.
	ErrSystemBusy = NewDomainError("SYSTEM_BUSY", "The resource is busy, please try again shortly")

	// ErrRateLimited signals that a fixed-window rate limit rejected the action.
	ErrRateLimited = NewDomainError("RATE_LIMITED", "Too many requests, please slow down")
)
