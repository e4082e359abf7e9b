package ports

import (
	"context"

	"github.com/loomworks/weft/internal/domain"
)

// RunOptions selects the starting point and trigger data of a run.
type RunOptions struct {
	// StartNodeID restricts execution to the subgraph reachable from this
	// node. Empty means start from every node with no incoming connections.
	StartNodeID string

	// Payload, when non-nil, is wrapped as {main: [[{json: payload}]]} and
	// handed to the start node(s).
	Payload interface{}

	UserID string

	// CallDepth tracks cross-workflow call nesting; callers leave it zero.
	CallDepth int
}

// GraphExecutor drives one workflow run to a terminal state and returns the
// completed execution record.
type GraphExecutor interface {
	Run(ctx context.Context, def *domain.WorkflowDefinition, opts RunOptions) (*domain.ExecutionRecord, error)
}

// ParameterValidator checks configured parameter values against a resolved
// property schema and returns the values with schema defaults applied.
type ParameterValidator interface {
	Validate(nodeID string, schema []domain.PropertyDescriptor, parameters map[string]interface{}) (map[string]interface{}, error)
}
