package domain

import (
	"context"
	"time"
)

// PropertyType enumerates the value shapes a configured parameter may take.
type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeOptions PropertyType = "options"
	PropertyTypeJSON    PropertyType = "json"
)

// PropertyDescriptor describes one configurable parameter of a node type.
type PropertyDescriptor struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Type        PropertyType `json:"type"`
	Required    bool         `json:"required"`
	Default     interface{}  `json:"default,omitempty"`
	Options     []string     `json:"options,omitempty"`
	Description string       `json:"description,omitempty"`
}

// SchemaFunc produces a property sequence from the node's currently
// configured parameters. It must be a pure function of its argument: the
// same parameters always yield a structurally identical sequence.
type SchemaFunc func(parameters map[string]interface{}) []PropertyDescriptor

// Schema is a tagged variant: either a fixed ordered property sequence or a
// function computing one from the configured parameters. Exactly one of the
// two fields is set.
type Schema struct {
	Fixed   []PropertyDescriptor
	Compute SchemaFunc
}

// FixedSchema builds a fixed-sequence schema.
func FixedSchema(props ...PropertyDescriptor) Schema {
	return Schema{Fixed: props}
}

// ComputedSchema builds a parameter-dependent schema.
func ComputedSchema(fn SchemaFunc) Schema {
	return Schema{Compute: fn}
}

// IsComputed reports whether the schema depends on configured parameters.
func (s Schema) IsComputed() bool {
	return s.Compute != nil
}

// Resolve evaluates the schema against the given parameters. A fixed schema
// ignores the parameters; a computed one is invoked with them. The returned
// slice is a copy the caller may hold onto.
func (s Schema) Resolve(parameters map[string]interface{}) []PropertyDescriptor {
	var props []PropertyDescriptor
	if s.Compute != nil {
		props = s.Compute(parameters)
	} else {
		props = s.Fixed
	}

	out := make([]PropertyDescriptor, len(props))
	copy(out, props)
	return out
}

// ExecuteFunc is the single execute contract every node type implements.
// It receives the assembled input envelope, the node's configured parameters
// (with schema defaults applied), and the run context, and returns the
// output envelope propagated downstream.
type ExecuteFunc func(ctx context.Context, inputs Envelope, parameters map[string]interface{}, rc *RunContext) (Envelope, error)

// NodeTypeDefinition is a registered unit of behavior: a name, a property
// schema, and an execute operation. Activation state is owned by the
// registry; the execute operation and schema shape are immutable for the
// process lifetime once registered.
type NodeTypeDefinition struct {
	Name        string
	DisplayName string
	Description string
	Schema      Schema
	Execute     ExecuteFunc
}

// WorkflowCaller lets a node trigger another stored workflow by id. The
// target's entry node receives the payload wrapped exactly like ordinary
// inter-node data.
type WorkflowCaller interface {
	Trigger(ctx context.Context, userID, workflowID string, payload interface{}) (*ExecutionRecord, error)
}

// RunContext carries per-execution metadata into a node's execute operation.
type RunContext struct {
	ExecutionID string
	WorkflowID  string
	NodeID      string
	NodeName    string
	UserID      string
	StartedAt   time.Time

	// Caller is non-nil when cross-workflow triggering is wired in.
	Caller WorkflowCaller
}
