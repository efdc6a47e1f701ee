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
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrEmptySelection  = NewDomainError("VALIDATION_ERROR", "Selection must contain at least one line item")
	ErrNoPayers        = NewDomainError("VALIDATION_ERROR", "Split requires at least one payer")
	ErrNoAssignedItems = NewDomainError("VALIDATION_ERROR", "No line item is assigned to any billing session")
	ErrDuplicateGroup  = NewDomainError("VALIDATION_ERROR", "Only one customization per group is allowed")
	ErrInFlight        = NewDomainError("INVALID_STATE", "A submission for this selection is already in progress")
)
