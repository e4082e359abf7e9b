package nodes

import (
	"context"
	"fmt"

	"github.com/loomworks/weft/internal/domain"
)

// executeWorkflow is the designated caller node type: it triggers another
// stored workflow by id, handing it the first incoming item's payload. The
// target workflow's entry node receives that payload wrapped exactly like
// ordinary inter-node data.
func executeWorkflow() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "executeWorkflow",
		DisplayName: "Execute Workflow",
		Description: "Triggers another workflow and waits for its completion",
		Schema: domain.FixedSchema(
			domain.PropertyDescriptor{
				Name:        "workflowId",
				DisplayName: "Workflow",
				Type:        domain.PropertyTypeString,
				Required:    true,
			},
		),
		Execute: func(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
			if rc.Caller == nil {
				return nil, fmt.Errorf("cross-workflow triggering is not wired in: %w", domain.ErrInvalidInput)
			}

			workflowID, _ := params["workflowId"].(string)
			payload, _ := inputs.FirstItem()

			record, err := rc.Caller.Trigger(ctx, rc.UserID, workflowID, payload)
			if err != nil {
				return nil, err
			}

			return domain.WrapPayload(map[string]interface{}{
				"execution_id": record.ID,
				"workflow_id":  record.WorkflowID,
				"status":       string(record.Status),
			}), nil
		},
	}
}
