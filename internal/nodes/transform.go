package nodes

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/xjson"
)

const (
	opTransform = "Transform"
	opFilter    = "Filter"
	opAggregate = "Aggregate"
)

// transform is the operation-dependent node type: its property schema is a
// function of the configured "operation", so a node set to Filter exposes a
// different field set than one set to Aggregate.
func transform() *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:        "transform",
		DisplayName: "Transform",
		Description: "Transforms, filters, or aggregates incoming items",
		Schema:      domain.ComputedSchema(transformSchema),
		Execute:     transformExecute,
	}
}

func transformSchema(params map[string]interface{}) []domain.PropertyDescriptor {
	props := []domain.PropertyDescriptor{
		{
			Name:        "operation",
			DisplayName: "Operation",
			Type:        domain.PropertyTypeOptions,
			Options:     []string{opTransform, opFilter, opAggregate},
			Required:    true,
			Default:     opTransform,
		},
	}

	operation, _ := params["operation"].(string)
	switch operation {
	case opFilter:
		props = append(props,
			domain.PropertyDescriptor{
				Name:        "path",
				DisplayName: "Path",
				Type:        domain.PropertyTypeString,
				Required:    true,
				Description: "JSON path to compare",
			},
			domain.PropertyDescriptor{
				Name:        "equals",
				DisplayName: "Equals",
				Type:        domain.PropertyTypeString,
				Required:    true,
			},
		)

	case opAggregate:
		props = append(props,
			domain.PropertyDescriptor{
				Name:        "aggregateField",
				DisplayName: "Aggregate Field",
				Type:        domain.PropertyTypeString,
				Required:    true,
			},
			domain.PropertyDescriptor{
				Name:        "aggregateOp",
				DisplayName: "Aggregate Operation",
				Type:        domain.PropertyTypeOptions,
				Options:     []string{"Sum", "Count"},
				Default:     "Sum",
			},
		)

	default:
		// Transform, and anything not yet chosen.
		props = append(props,
			domain.PropertyDescriptor{
				Name:        "sourcePath",
				DisplayName: "Source Path",
				Type:        domain.PropertyTypeString,
				Required:    true,
				Description: "JSON path to read from each item",
			},
			domain.PropertyDescriptor{
				Name:        "targetField",
				DisplayName: "Target Field",
				Type:        domain.PropertyTypeString,
				Default:     "value",
			},
		)
	}

	return props
}

func transformExecute(ctx context.Context, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (domain.Envelope, error) {
	operation, _ := params["operation"].(string)
	items := inputs.Items(domain.MainPort)

	switch operation {
	case opFilter:
		return filterItems(items, params)
	case opAggregate:
		return aggregateItems(items, params)
	case opTransform, "":
		return transformItems(items, params)
	default:
		return nil, fmt.Errorf("unknown operation '%s': %w", operation, domain.ErrInvalidInput)
	}
}

func transformItems(items []domain.Item, params map[string]interface{}) (domain.Envelope, error) {
	sourcePath, _ := params["sourcePath"].(string)
	targetField, _ := params["targetField"].(string)
	if targetField == "" {
		targetField = "value"
	}

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		data, err := xjson.Marshal(item.JSON)
		if err != nil {
			return nil, err
		}

		value := gjson.GetBytes(data, sourcePath).Value()
		result, err := sjson.SetBytes([]byte(`{}`), targetField, value)
		if err != nil {
			return nil, err
		}

		var payload interface{}
		if err := xjson.Unmarshal(result, &payload); err != nil {
			return nil, err
		}
		out = append(out, domain.Item{JSON: payload})
	}

	return domain.NewEnvelope(out...), nil
}

func filterItems(items []domain.Item, params map[string]interface{}) (domain.Envelope, error) {
	path, _ := params["path"].(string)
	expected, _ := params["equals"].(string)

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		data, err := xjson.Marshal(item.JSON)
		if err != nil {
			return nil, err
		}
		if gjson.GetBytes(data, path).String() == expected {
			out = append(out, item)
		}
	}

	return domain.NewEnvelope(out...), nil
}

func aggregateItems(items []domain.Item, params map[string]interface{}) (domain.Envelope, error) {
	field, _ := params["aggregateField"].(string)
	op, _ := params["aggregateOp"].(string)

	switch op {
	case "Count":
		return domain.NewEnvelope(domain.Item{JSON: map[string]interface{}{
			"count": len(items),
		}}), nil

	case "Sum", "":
		sum := 0.0
		for _, item := range items {
			data, err := xjson.Marshal(item.JSON)
			if err != nil {
				return nil, err
			}
			sum += gjson.GetBytes(data, field).Float()
		}
		return domain.NewEnvelope(domain.Item{JSON: map[string]interface{}{
			"sum": sum,
		}}), nil

	default:
		return nil, fmt.Errorf("unknown aggregate operation '%s': %w", op, domain.ErrInvalidInput)
	}
}
