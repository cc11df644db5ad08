package apperr

import (
	"fmt"
	"net/http"
)

// ValidationError input failed validation; rejected before any state mutation
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation builds a ValidationError with field-level detail
func NewValidation(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError a referenced entity is absent; no partial mutation occurred
type NotFoundError struct {
	Entity string `json:"entity"`
	Ref    string `json:"ref,omitempty"`
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// NewNotFound builds a NotFoundError
func NewNotFound(entity, ref string) *NotFoundError {
	return &NotFoundError{Entity: entity, Ref: ref}
}

// ConflictError the operation conflicts with current state, e.g. a write
// against a terminal request
type ConflictError struct {
	Message string `json:"message"`
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflict builds a ConflictError
func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// UserError when user is disallowed from a resource
type UserError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *UserError) Error() string {
	return e.Message
}

// NewForbidden builds a UserError with 403
func NewForbidden(message string) *UserError {
	return &UserError{Message: message, StatusCode: http.StatusForbidden}
}
