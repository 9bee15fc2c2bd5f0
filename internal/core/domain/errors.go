package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Определяем переменные-ошибки, которые могут быть возвращены из хранилища и Use Cases.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("property not found")
	ErrStoreUnavailable = errors.New("property store unavailable")
	ErrForbidden        = errors.New("operation not allowed for this user")
	ErrLeadLimitReached = errors.New("lead limit reached for listing plan")
	ErrTokenInvalid     = errors.New("token is invalid or expired")
)

// ValidationError перечисляет поля, не прошедшие проверку.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError - хелпер для ошибки по одному полю
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}
