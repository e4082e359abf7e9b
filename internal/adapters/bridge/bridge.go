package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
)

// Bridge lets one workflow's caller node invoke a second, independently
// stored workflow by id. The target workflow's entry node receives the
// payload wrapped in the same envelope convention as ordinary inter-node
// data: {main: [[{json: payload}]]}. A component reading received data can
// never tell a cross-workflow call apart from a sibling node's output.
type Bridge struct {
	workflows ports.WorkflowStore
	executor  ports.GraphExecutor
	auth      ports.Authorizer
	maxDepth  int
	logger    *slog.Logger
}

func New(workflows ports.WorkflowStore, executor ports.GraphExecutor, auth ports.Authorizer, maxDepth int, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth <= 0 {
		maxDepth = 8
	}

	return &Bridge{
		workflows: workflows,
		executor:  executor,
		auth:      auth,
		maxDepth:  maxDepth,
		logger:    logger.With("component", "trigger-bridge"),
	}
}

// Trigger runs the target workflow with the given payload and waits for its
// completion, returning the target's execution record.
func (b *Bridge) Trigger(ctx context.Context, userID, workflowID string, payload interface{}) (*domain.ExecutionRecord, error) {
	depth := domain.CallDepth(ctx)
	if depth >= b.maxDepth {
		return nil, fmt.Errorf("cross-workflow call depth %d exceeds limit %d: %w", depth, b.maxDepth, domain.ErrInvalidInput)
	}

	if b.auth != nil {
		allowed, err := b.auth.CanAccess(ctx, userID, workflowID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("user '%s' cannot trigger workflow '%s': %w", userID, workflowID, domain.ErrUnauthorized)
		}
	}

	def, err := b.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("cross-workflow trigger",
		"workflow_id", workflowID,
		"user_id", userID,
		"call_depth", depth+1,
	)

	return b.executor.Run(ctx, def, ports.RunOptions{
		Payload:   payload,
		UserID:    userID,
		CallDepth: depth + 1,
	})
}
