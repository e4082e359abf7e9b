package domain

import (
	"errors"
	"time"
)

// ExecutionStatus is the per-run state machine:
// PENDING -> RUNNING -> {SUCCESS, ERROR, CANCELLED}. Terminal states never
// transition further.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSuccess   ExecutionStatus = "success"
	ExecutionStatusError     ExecutionStatus = "error"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transition.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusSuccess, ExecutionStatusError, ExecutionStatusCancelled:
		return true
	}
	return false
}

// NodeRunStatus is the terminal state of a single node within a run.
type NodeRunStatus string

const (
	NodeRunSuccess NodeRunStatus = "success"
	NodeRunError   NodeRunStatus = "error"
	NodeRunSkipped NodeRunStatus = "skipped"
)

// NodeError is the structured, storable form of a node failure. Raw Go
// errors are never persisted; they are normalized here first.
type NodeError struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Trace   string `json:"trace,omitempty"`
}

func (e *NodeError) Error() string {
	return e.Message
}

// Error kinds recorded on NodeError. These mirror the engine's error
// taxonomy so a stored record can be classified without the original error
// value.
const (
	ErrorKindNotFound   = "not_found"
	ErrorKindValidation = "validation"
	ErrorKindExecution  = "execution"
	ErrorKindStructural = "structural"
	ErrorKindPanic      = "panic"
)

// NormalizeError converts any error into the structured NodeError shape.
func NormalizeError(err error) *NodeError {
	if err == nil {
		return nil
	}

	var ne *NodeError
	if errors.As(err, &ne) {
		return ne
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return &NodeError{
			Message: panicErr.Error(),
			Kind:    ErrorKindPanic,
			Trace:   panicErr.Stack,
		}
	}

	kind := ErrorKindExecution
	switch {
	case IsNotFound(err):
		kind = ErrorKindNotFound
	case IsValidation(err):
		kind = ErrorKindValidation
	case IsStructural(err):
		kind = ErrorKindStructural
	}

	return &NodeError{
		Message: err.Error(),
		Kind:    kind,
	}
}

// NodeExecutionResult is one entry in a run's ordered result sequence.
type NodeExecutionResult struct {
	NodeID     string        `json:"node_id"`
	Status     NodeRunStatus `json:"status"`
	Output     Envelope      `json:"output,omitempty"`
	Error      *NodeError    `json:"error,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// ExecutionRecord captures one run of a workflow: who triggered it, how it
// ended, the ordered per-node results, and an immutable point-in-time
// snapshot of the workflow definition used.
//
// WorkflowSnapshot is nil on legacy records created before snapshotting
// existed; readers fall back to the live workflow in that case.
type ExecutionRecord struct {
	ID               string                `json:"id"`
	WorkflowID       string                `json:"workflow_id"`
	UserID           string                `json:"user_id"`
	Status           ExecutionStatus       `json:"status"`
	Results          []NodeExecutionResult `json:"results"`
	WorkflowSnapshot *WorkflowDefinition   `json:"workflow_snapshot,omitempty"`
	SnapshotVersion  int                   `json:"snapshot_version,omitempty"`
	SnapshotHash     string                `json:"snapshot_hash,omitempty"`
	StartedAt        time.Time             `json:"started_at"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty"`
}

// ResultFor returns the recorded result for the given node id, if any.
func (r *ExecutionRecord) ResultFor(nodeID string) (*NodeExecutionResult, bool) {
	for i := range r.Results {
		if r.Results[i].NodeID == nodeID {
			return &r.Results[i], true
		}
	}
	return nil, false
}

// HasSnapshot reports whether this record carries a workflow snapshot.
func (r *ExecutionRecord) HasSnapshot() bool {
	return r.WorkflowSnapshot != nil
}
