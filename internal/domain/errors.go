package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrNotReady        = errors.New("registry not ready")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyTerminal = errors.New("execution already in terminal state")
	ErrUnauthorized    = errors.New("caller not authorized for workflow")
	ErrClosed          = errors.New("store closed")
)

// NotFoundError identifies a missing named resource (node type, workflow,
// execution record). During the registry's initialization window lookups
// await readiness first, so a NotFoundError from the registry is genuine.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// FieldIssue names one parameter that failed validation and why.
type FieldIssue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError reports configured parameters that fail the resolved
// property schema. It always names the offending fields.
type ValidationError struct {
	NodeID string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("parameter validation failed for node '%s'", e.NodeID)
	}

	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return fmt.Sprintf("parameter validation failed for node '%s': %s", e.NodeID, strings.Join(msgs, "; "))
}

// StructuralError reports a malformed graph: an edge referencing a
// nonexistent node or port, or a dependency cycle.
type StructuralError struct {
	Message string
	NodeID  string
}

func (e *StructuralError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("structural error at node '%s': %s", e.NodeID, e.Message)
	}
	return "structural error: " + e.Message
}

func NewStructuralError(nodeID, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		NodeID:  nodeID,
		Message: fmt.Sprintf(format, args...),
	}
}

// ExecutionFailure wraps an error returned by a node's execute operation.
type ExecutionFailure struct {
	NodeID string
	Err    error
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("node '%s' execution failed: %v", e.NodeID, e.Err)
}

func (e *ExecutionFailure) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic from a node's execute operation,
// including the captured stack.
type PanicError struct {
	NodeID string
	Value  interface{}
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node '%s' panicked: %v", e.NodeID, e.Value)
}

// StorageError wraps a failure of the durable record store.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key '%s': %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// RegistrationError reports a node type definition the registry rejected.
type RegistrationError struct {
	TypeName string
	Reason   string
}

func (e *RegistrationError) Error() string {
	return "node type registration failed for '" + e.TypeName + "': " + e.Reason
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
