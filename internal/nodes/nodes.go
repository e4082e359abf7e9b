// Package nodes provides the built-in node types loaded into the registry
// at process start.
package nodes

import (
	"context"

	"github.com/tidwall/sjson"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/xjson"
)

// Builtins returns the built-in node type definitions. The registry loads
// these asynchronously at start.
func Builtins() []*domain.NodeTypeDefinition {
	return []*domain.NodeTypeDefinition{
		workflowTrigger(),
		noop(),
		set(),
		merge(),
		transform(),
		executeWorkflow(),
	}
}

// workflowTrigger is the designated entry node type. Trigger data — local
// or from a cross-workflow call — arrives already wrapped in the standard
// envelope and is passed through unchanged.
func workflowTrigger() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "workflowTrigger",
		DisplayName: "Workflow Trigger",
		Description: "Entry point receiving trigger data",
		Schema:      domain.FixedSchema(),
		Execute: func(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
			if len(inputs) == 0 {
				return domain.NewEnvelope(domain.Item{JSON: map[string]interface{}{}}), nil
			}
			return inputs, nil
		},
	}
}

func noop() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "noop",
		DisplayName: "No Operation",
		Description: "Passes its input through unchanged",
		Schema:      domain.FixedSchema(),
		Execute: func(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
			return inputs, nil
		},
	}
}

// set writes literal values into every incoming item. With no input it
// emits a single item holding just the configured values.
func set() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "set",
		DisplayName: "Set",
		Description: "Sets literal fields on each item",
		Schema: domain.FixedSchema(
			domain.PropertyDescriptor{
				Name:        "values",
				DisplayName: "Values",
				Type:        domain.PropertyTypeJSON,
				Required:    true,
				Description: "Mapping of field name to literal value",
			},
		),
		Execute: func(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
			values, _ := params["values"].(map[string]interface{})

			items := inputs.Items(domain.MainPort)
			if len(items) == 0 {
				items = []domain.Item{{JSON: map[string]interface{}{}}}
			}

			out := make([]domain.Item, 0, len(items))
			for _, item := range items {
				data, err := xjson.Marshal(item.JSON)
				if err != nil {
					return nil, err
				}
				for field, value := range values {
					data, err = sjson.SetBytes(data, field, value)
					if err != nil {
						return nil, err
					}
				}

				var payload interface{}
				if err := xjson.Unmarshal(data, &payload); err != nil {
					return nil, err
				}
				out = append(out, domain.Item{JSON: payload})
			}

			return domain.NewEnvelope(out...), nil
		},
	}
}

// merge concatenates every fan-in run on the main port into a single run,
// preserving connection declaration order.
func merge() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "merge",
		DisplayName: "Merge",
		Description: "Concatenates fan-in runs into one run",
		Schema:      domain.FixedSchema(),
		Execute: func(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
			return domain.NewEnvelope(inputs.Items(domain.MainPort)...), nil
		},
	}
}
