package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vitthalk15/DataDash/app/repositories"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = errors.New("product not found")
)

// AuthError is an authentication failure with a client-facing message.
// It matches ErrUnauthenticated.
type AuthError struct{ Message string }

func (e *AuthError) Error() string        { return e.Message }
func (e *AuthError) Is(target error) bool { return target == ErrUnauthenticated }

// ForbiddenError carries the message shown to the caller. It matches ErrForbidden.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string        { return e.Message }
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func forbidden(msg string) error { return &ForbiddenError{Message: msg} }

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct{ Resource string }

func (e *NotFoundError) Error() string        { return e.Resource + " not found" }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError maps field paths to messages. Message, when set,
// replaces the generic "Validation error" summary.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" && len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ProductNotFoundError is raised while pricing line items. It matches
// ErrProductNotFound.
type ProductNotFoundError struct{ ID string }

func (e *ProductNotFoundError) Error() string        { return fmt.Sprintf("Product not found: %s", e.ID) }
func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

// translate maps repository sentinels onto service errors.
func translate(resource string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}
