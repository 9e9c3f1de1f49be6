package domain

import "fmt"

// Error codes for domain errors
const (
	ErrCodeFileNotFound  = "FILE_NOT_FOUND"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeConfigError   = "CONFIG_ERROR"
	ErrCodeAnalysisError = "ANALYSIS_ERROR"
	ErrCodeOutputError   = "OUTPUT_ERROR"
)

// DomainError is an error carrying a machine readable code
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

func NewFileNotFoundError(path string, cause error) *DomainError {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

func NewInvalidInputError(message string, cause error) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

func NewConfigError(message string, cause error) *DomainError {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

func NewAnalysisError(message string, cause error) *DomainError {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

func NewOutputError(message string, cause error) *DomainError {
	return NewDomainError(ErrCodeOutputError, message, cause)
}
