// Package weft provides an embeddable workflow execution engine.
//
// A workflow is a directed graph of typed node instances connected by data
// edges. Weft resolves execution order over the graph, feeds each node the
// outputs of its upstream nodes, records per-node results, and persists an
// immutable snapshot of the workflow definition used for each run.
//
// Basic usage:
//
//	manager, err := weft.New(&weft.Config{DataDir: "./data"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.Close()
//
//	manager.SaveWorkflow(ctx, &weft.WorkflowDefinition{
//	    ID: "greeting",
//	    Nodes: []weft.WorkflowNode{
//	        {ID: "in", Type: "workflowTrigger"},
//	        {ID: "out", Type: "set", Parameters: map[string]interface{}{
//	            "values": map[string]interface{}{"greeting": "hello"},
//	        }},
//	    },
//	    Connections: []weft.Connection{
//	        {SourceNode: "in", TargetNode: "out"},
//	    },
//	})
//
//	record, err := manager.Run(ctx, "greeting", weft.RunOptions{
//	    Payload: map[string]interface{}{"name": "ada"},
//	})
package weft

import (
	"github.com/loomworks/weft/internal/core"
	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
)

// Manager is the assembled engine: node type registry, graph executor,
// execution recorder, and cross-workflow trigger bridge.
type Manager = core.Manager

// Option adjusts manager assembly.
type Option = core.Option

// Config carries all engine settings; zero values get sane defaults.
type Config = domain.Config

// WorkflowDefinition is the user-authored graph: nodes, connections, and a
// settings blob.
type WorkflowDefinition = domain.WorkflowDefinition

// WorkflowNode is a configured occurrence of a node type within a workflow.
type WorkflowNode = domain.WorkflowNode

// Connection is a directed data edge between two node ports.
type Connection = domain.Connection

// NodeTypeDefinition is a registered unit of behavior: name, property
// schema, and execute operation.
type NodeTypeDefinition = domain.NodeTypeDefinition

// PropertyDescriptor describes one configurable parameter of a node type.
type PropertyDescriptor = domain.PropertyDescriptor

// Schema is either a fixed property sequence or a function computing one
// from the node's configured parameters.
type Schema = domain.Schema

// RunContext carries per-execution metadata into a node's execute operation.
type RunContext = domain.RunContext

// Envelope is the {port: [[{json: payload}]]} wrapping convention for data
// passed between nodes and across workflow-call boundaries.
type Envelope = domain.Envelope

// Item is a single unit of data flowing along a connection.
type Item = domain.Item

// ExecutionRecord captures one run: status, ordered per-node results, and
// the immutable workflow snapshot taken at start time.
type ExecutionRecord = domain.ExecutionRecord

// NodeExecutionResult is one entry in a run's ordered result sequence.
type NodeExecutionResult = domain.NodeExecutionResult

// NodeError is the structured, storable form of a node failure.
type NodeError = domain.NodeError

// RunOptions selects the starting point and trigger data of a run.
type RunOptions = ports.RunOptions

// Authorizer is the "caller is authorized for workflow W" capability.
type Authorizer = ports.Authorizer

// Storage is the durable record store capability.
type Storage = ports.Storage

// Execution statuses.
const (
	ExecutionStatusPending   = domain.ExecutionStatusPending
	ExecutionStatusRunning   = domain.ExecutionStatusRunning
	ExecutionStatusSuccess   = domain.ExecutionStatusSuccess
	ExecutionStatusError     = domain.ExecutionStatusError
	ExecutionStatusCancelled = domain.ExecutionStatusCancelled
)

// Per-node terminal statuses.
const (
	NodeRunSuccess = domain.NodeRunSuccess
	NodeRunError   = domain.NodeRunError
	NodeRunSkipped = domain.NodeRunSkipped
)

// MainPort is the canonical default data port between nodes.
const MainPort = domain.MainPort

// New assembles a manager from the given config. A nil config uses
// defaults: badger storage under ./data and the built-in node types.
func New(cfg *Config, opts ...Option) (*Manager, error) {
	return core.NewManager(cfg, opts...)
}

// LoadConfig reads a yaml config file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	return domain.LoadConfig(path)
}

// WithAuthorizer installs the authorization capability consulted before a
// run starts.
func WithAuthorizer(auth Authorizer) Option {
	return core.WithAuthorizer(auth)
}

// WithStorage substitutes the durable store.
func WithStorage(store Storage) Option {
	return core.WithStorage(store)
}

// FixedSchema builds a fixed-sequence property schema.
func FixedSchema(props ...PropertyDescriptor) Schema {
	return domain.FixedSchema(props...)
}

// ComputedSchema builds a parameter-dependent property schema.
func ComputedSchema(fn domain.SchemaFunc) Schema {
	return domain.ComputedSchema(fn)
}

// WrapPayload wraps a payload as {main: [[{json: payload}]]}.
func WrapPayload(payload interface{}) Envelope {
	return domain.WrapPayload(payload)
}
