package ports

import (
	"context"

	"github.com/loomworks/weft/internal/domain"
)

// ExecutionRecorder creates and persists execution records. The snapshot is
// captured once in Begin and never recomputed; AppendResult is a monotonic
// append, never an overwrite.
type ExecutionRecorder interface {
	Begin(ctx context.Context, def *domain.WorkflowDefinition, userID string) (*domain.ExecutionRecord, error)
	MarkRunning(ctx context.Context, recordID string) error
	AppendResult(ctx context.Context, recordID string, result domain.NodeExecutionResult) error
	Complete(ctx context.Context, recordID string, status domain.ExecutionStatus) error

	Get(ctx context.Context, recordID string) (*domain.ExecutionRecord, error)
	ListForWorkflow(ctx context.Context, workflowID string) ([]*domain.ExecutionRecord, error)
}

// WorkflowStore persists workflow definitions.
type WorkflowStore interface {
	Save(ctx context.Context, def *domain.WorkflowDefinition) error
	Get(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error)
	Delete(ctx context.Context, workflowID string) error
	List(ctx context.Context) ([]*domain.WorkflowDefinition, error)
}

// Authorizer is the authorization capability: "caller is authorized for
// workflow W". Mechanics are a collaborator concern.
type Authorizer interface {
	CanAccess(ctx context.Context, userID, workflowID string) (bool, error)
}
