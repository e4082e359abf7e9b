package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"dario.cat/mergo"

	"github.com/loomworks/weft/internal/domain"
)

// Validator checks a node's configured parameter values against its
// resolved property schema before execution.
type Validator struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{
		logger: logger.With("component", "parameter-validator"),
	}
}

// Validate returns the configured parameters with schema defaults merged in
// for absent fields, or a ValidationError naming every offending field.
// Parameters not covered by the schema are passed through untouched.
func (v *Validator) Validate(nodeID string, schema []domain.PropertyDescriptor, parameters map[string]interface{}) (map[string]interface{}, error) {
	merged := make(map[string]interface{}, len(parameters))
	for k, val := range parameters {
		merged[k] = val
	}

	defaults := make(map[string]interface{})
	for _, prop := range schema {
		if prop.Default != nil {
			defaults[prop.Name] = prop.Default
		}
	}

	if len(defaults) > 0 {
		if err := mergo.Merge(&merged, defaults); err != nil {
			return nil, &domain.ValidationError{
				NodeID: nodeID,
				Issues: []domain.FieldIssue{{
					Field:   "*",
					Rule:    "defaults",
					Message: fmt.Sprintf("failed to apply schema defaults: %v", err),
				}},
			}
		}
	}

	var issues []domain.FieldIssue
	for _, prop := range schema {
		value, present := merged[prop.Name]

		if !present || value == nil {
			if prop.Required {
				issues = append(issues, domain.FieldIssue{
					Field:   prop.Name,
					Rule:    "required",
					Message: "field is required",
				})
			}
			continue
		}

		if issue := checkType(prop, value); issue != nil {
			issues = append(issues, *issue)
		}
	}

	if len(issues) > 0 {
		v.logger.Debug("parameter validation failed",
			"node_id", nodeID,
			"issue_count", len(issues),
		)
		return nil, &domain.ValidationError{NodeID: nodeID, Issues: issues}
	}

	return merged, nil
}

func checkType(prop domain.PropertyDescriptor, value interface{}) *domain.FieldIssue {
	switch prop.Type {
	case domain.PropertyTypeString:
		if _, ok := value.(string); !ok {
			return typeIssue(prop.Name, "string", value)
		}

	case domain.PropertyTypeNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
		default:
			return typeIssue(prop.Name, "number", value)
		}

	case domain.PropertyTypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeIssue(prop.Name, "boolean", value)
		}

	case domain.PropertyTypeOptions:
		str, ok := value.(string)
		if !ok {
			return typeIssue(prop.Name, "options", value)
		}
		for _, opt := range prop.Options {
			if str == opt {
				return nil
			}
		}
		return &domain.FieldIssue{
			Field:   prop.Name,
			Rule:    "oneof",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(prop.Options, ", ")),
		}

	case domain.PropertyTypeJSON:
		// Any JSON-shaped value is acceptable.
	}

	return nil
}

func typeIssue(field, expected string, value interface{}) *domain.FieldIssue {
	return &domain.FieldIssue{
		Field:   field,
		Rule:    "type",
		Message: fmt.Sprintf("expected %s, got %T", expected, value),
	}
}
