package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Critical errors that should stop the monitor before it starts
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Recoverable errors, logged once per cycle
	ErrorCategoryMarketData   ErrorCategory = "MARKET_DATA"
	ErrorCategoryPersistence  ErrorCategory = "PERSISTENCE"
	ErrorCategoryNotification ErrorCategory = "NOTIFICATION"
	ErrorCategoryNetwork      ErrorCategory = "NETWORK"
	ErrorCategoryTimeout      ErrorCategory = "TIMEOUT"
	ErrorCategoryValidation   ErrorCategory = "VALIDATION"
)

// BotError represents a categorized error with context
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *BotError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s:%s] %s", e.Category, e.Component, e.Operation)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping
func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried
func (e *BotError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error should stop the monitor
func (e *BotError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration
}

// NewBotError creates a new categorized bot error
func NewBotError(category ErrorCategory, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with bot error context
func WrapError(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *BotError) WithContext(key string, value interface{}) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *BotError) WithRetryable(retryable bool) *BotError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryMarketData:
		return true
	default:
		return false
	}
}

// CategoryOf returns the category of the first BotError in the chain
func CategoryOf(err error) (ErrorCategory, bool) {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Category, true
	}
	return "", false
}

// IsCategory reports whether any BotError in the chain carries the category
func IsCategory(err error, category ErrorCategory) bool {
	for err != nil {
		if botErr, ok := err.(*BotError); ok && botErr.Category == category {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsFatal reports whether err should stop the process
func IsFatal(err error) bool {
	var botErr *BotError
	return stderrors.As(err, &botErr) && botErr.IsFatal()
}

// CategorizeError attempts to categorize a generic transport error
func CategorizeError(err error, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	return WrapError(err, ErrorCategoryMarketData, component, operation)
}

// Common error constructors

func NewConfigurationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryConfiguration, component, operation, message)
}

func NewValidationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryValidation, component, operation, message)
}

func NewMarketDataError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryMarketData, component, operation)
}

func NewPersistenceError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryPersistence, component, operation)
}

func NewNotificationError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryNotification, component, operation)
}
