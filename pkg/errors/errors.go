// Package errors provides the error types for the civimport engine.
// Reconciliation distinguishes between per-record failures (a record that
// cannot derive its identity or resolve a reference) and batch-fatal
// failures (ambiguous storage state, people without memberships), and the
// types here make those cases checkable with errors.Is / errors.As.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the civimport system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrMissingIdentityField indicates a record lacks a field required to
	// derive its natural key
	ErrMissingIdentityField = errors.New("missing identity field")

	// ErrUnresolvedReference indicates a foreign reference's transient
	// identifier has no durable mapping
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrAmbiguousMatch indicates storage holds more than one record for a
	// single natural key
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrNoMemberships indicates a person batch contains people without any
	// membership
	ErrNoMemberships = errors.New("people without memberships")

	// ErrDuplicateMapping indicates a transient identifier was mapped twice
	// to different durable identifiers within one run
	ErrDuplicateMapping = errors.New("duplicate identifier mapping")

	// ErrInvalidMapping indicates an identifier mapping with an empty
	// transient or durable side
	ErrInvalidMapping = errors.New("invalid identifier mapping")

	// ErrReadOnly indicates an attempt to modify a read-only store
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// MissingIdentityFieldError reports a record whose natural key cannot be
// derived because a required field is absent. Fatal for that record only.
type MissingIdentityFieldError struct {
	EntityType string
	Field      string
}

// Error implements the error interface
func (e *MissingIdentityFieldError) Error() string {
	return fmt.Sprintf("%s record is missing identity field %s", e.EntityType, e.Field)
}

// Is implements errors.Is support
func (e *MissingIdentityFieldError) Is(target error) bool {
	return target == ErrMissingIdentityField
}

// NewMissingIdentityFieldError creates a new MissingIdentityFieldError
func NewMissingIdentityFieldError(entityType, field string) *MissingIdentityFieldError {
	return &MissingIdentityFieldError{EntityType: entityType, Field: field}
}

// UnresolvedReferenceError reports a foreign reference whose transient
// identifier has no mapping, meaning the referenced record's import stage
// did not run or did not include it. Fatal for the referencing record.
type UnresolvedReferenceError struct {
	EntityType string
	Reference  string
}

// Error implements the error interface
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s record references %s which has no durable identifier", e.EntityType, e.Reference)
}

// Is implements errors.Is support
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// NewUnresolvedReferenceError creates a new UnresolvedReferenceError
func NewUnresolvedReferenceError(entityType, reference string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{EntityType: entityType, Reference: reference}
}

// AmbiguousMatchError reports that storage holds more than one record for a
// single natural key. The keys are unique-constrained, so this signals
// corrupted state rather than bad input, and it always halts the batch.
type AmbiguousMatchError struct {
	EntityType string
	Key        string
	Count      int
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d %s records match key %q, expected at most one", e.Count, e.EntityType, e.Key)
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// NewAmbiguousMatchError creates a new AmbiguousMatchError
func NewAmbiguousMatchError(entityType, key string, count int) *AmbiguousMatchError {
	return &AmbiguousMatchError{EntityType: entityType, Key: key, Count: count}
}

// NoMembershipsError reports every person in a batch that has no membership
// in the same batch. A person without any role is an unmodeled state, so the
// whole person stage aborts and nothing from it is persisted.
type NoMembershipsError struct {
	IDs []string
}

// Error implements the error interface
func (e *NoMembershipsError) Error() string {
	return fmt.Sprintf("no memberships for %d people: %s", len(e.IDs), strings.Join(e.IDs, ", "))
}

// Is implements errors.Is support
func (e *NoMembershipsError) Is(target error) bool {
	return target == ErrNoMemberships
}

// NewNoMembershipsError creates a new NoMembershipsError
func NewNoMembershipsError(ids []string) *NoMembershipsError {
	return &NoMembershipsError{IDs: ids}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ParseError represents an error when decoding scraped input
type ParseError struct {
	Format  string // "yaml", "json"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingIdentityField checks if an error is a missing identity field error
func IsMissingIdentityField(err error) bool {
	return errors.Is(err, ErrMissingIdentityField)
}

// IsUnresolvedReference checks if an error is an unresolved reference error
func IsUnresolvedReference(err error) bool {
	return errors.Is(err, ErrUnresolvedReference)
}

// IsAmbiguousMatch checks if an error is an ambiguous match error
func IsAmbiguousMatch(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsNoMemberships checks if an error is a no memberships error
func IsNoMemberships(err error) bool {
	return errors.Is(err, ErrNoMemberships)
}
