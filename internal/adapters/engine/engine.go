package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
)

// Executor drives a single workflow run: it computes execution order over
// the connection graph, feeds each node the outputs of its upstream nodes,
// and records per-node results as the run progresses.
//
// Execution is strict sequential topological order with declaration-order
// tie-breaking, so a run over the same definition is reproducible.
type Executor struct {
	registry  ports.NodeTypeRegistry
	validator ports.ParameterValidator
	recorder  ports.ExecutionRecorder
	logger    *slog.Logger

	callerMu sync.RWMutex
	caller   domain.WorkflowCaller

	// recordID -> context.CancelFunc for in-flight runs.
	runs sync.Map
}

func New(registry ports.NodeTypeRegistry, validator ports.ParameterValidator, recorder ports.ExecutionRecorder, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		registry:  registry,
		validator: validator,
		recorder:  recorder,
		logger:    logger.With("component", "graph-executor"),
	}
}

// SetCaller wires in the cross-workflow trigger bridge. Set once during
// assembly, before any run starts.
func (e *Executor) SetCaller(caller domain.WorkflowCaller) {
	e.callerMu.Lock()
	defer e.callerMu.Unlock()
	e.caller = caller
}

func (e *Executor) workflowCaller() domain.WorkflowCaller {
	e.callerMu.RLock()
	defer e.callerMu.RUnlock()
	return e.caller
}

// Cancel requests cancellation of an in-flight run. It takes effect at the
// next node boundary, never mid-node. Reports whether a matching run was
// found.
func (e *Executor) Cancel(recordID string) bool {
	if v, ok := e.runs.Load(recordID); ok {
		v.(context.CancelFunc)()
		return true
	}
	return false
}

// Run executes the reachable subgraph of def and returns the completed
// execution record. Node-level failures land in the record; an error return
// means the run could not start at all (structural problem or storage
// failure).
func (e *Executor) Run(ctx context.Context, def *domain.WorkflowDefinition, opts ports.RunOptions) (*domain.ExecutionRecord, error) {
	g, err := buildGraph(def)
	if err != nil {
		return nil, err
	}

	starts, err := g.startNodes(def, opts.StartNodeID)
	if err != nil {
		return nil, err
	}

	reachable := g.reachable(starts)
	order, err := g.topoOrder(reachable)
	if err != nil {
		return nil, err
	}

	record, err := e.recorder.Begin(ctx, def, opts.UserID)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(domain.WithCallDepth(ctx, opts.CallDepth))
	defer cancel()
	e.runs.Store(record.ID, cancel)
	defer e.runs.Delete(record.ID)

	// Persistence must outlive a cancelled run: completed results and the
	// terminal CANCELLED status are still written.
	persistCtx := context.WithoutCancel(ctx)

	if err := e.recorder.MarkRunning(persistCtx, record.ID); err != nil {
		return nil, err
	}

	e.logger.Debug("run started",
		"execution_id", record.ID,
		"workflow_id", def.ID,
		"reachable_nodes", len(order),
		"start_nodes", starts,
	)

	run := &runState{
		executor:  e,
		def:       def,
		graph:     g,
		record:    record,
		opts:      opts,
		startSet:  toSet(starts),
		statuses:  make(map[string]domain.NodeRunStatus, len(order)),
		outputs:   make(map[string]domain.Envelope, len(order)),
		blockedBy: make(map[string]string),
	}

	cancelled := false
	hadError := false

	for _, nodeID := range order {
		// Cancellation is observed only between node executions.
		select {
		case <-runCtx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		result := run.executeNode(runCtx, nodeID)
		if result.Status == domain.NodeRunError {
			hadError = true
		}

		if err := e.recorder.AppendResult(persistCtx, record.ID, result); err != nil {
			return nil, err
		}
	}

	final := domain.ExecutionStatusSuccess
	switch {
	case cancelled:
		final = domain.ExecutionStatusCancelled
	case hadError:
		final = domain.ExecutionStatusError
	}

	if err := e.recorder.Complete(persistCtx, record.ID, final); err != nil {
		return nil, err
	}

	e.logger.Debug("run finished",
		"execution_id", record.ID,
		"workflow_id", def.ID,
		"status", final,
	)

	return e.recorder.Get(persistCtx, record.ID)
}

// runState is the working state of one run. Owned by a single goroutine.
type runState struct {
	executor *Executor
	def      *domain.WorkflowDefinition
	graph    *graph
	record   *domain.ExecutionRecord
	opts     ports.RunOptions
	startSet map[string]bool

	statuses map[string]domain.NodeRunStatus
	outputs  map[string]domain.Envelope

	// blockedBy maps a node to the id of the failed ancestor preventing it
	// from running; the relation is transitive.
	blockedBy map[string]string
}

func (r *runState) executeNode(ctx context.Context, nodeID string) domain.NodeExecutionResult {
	started := time.Now().UTC()
	node, _ := r.def.NodeByID(nodeID)

	if ancestor, blocked := r.upstreamFailure(nodeID); blocked {
		r.blockedBy[nodeID] = ancestor
		return r.skip(nodeID, started, fmt.Sprintf("upstream node '%s' failed", ancestor))
	}

	if node.Disabled {
		return r.skip(nodeID, started, "node disabled")
	}

	typeDef, err := r.executor.registry.Get(ctx, node.Type)
	if err != nil {
		return r.fail(nodeID, started, err)
	}

	active, err := r.executor.registry.Active(ctx, node.Type)
	if err != nil {
		return r.fail(nodeID, started, err)
	}
	if !active {
		return r.skip(nodeID, started, fmt.Sprintf("node type '%s' is inactive", node.Type))
	}

	schema, err := r.executor.registry.ResolveSchema(ctx, node.Type, node.Parameters)
	if err != nil {
		return r.fail(nodeID, started, err)
	}

	params, err := r.executor.validator.Validate(nodeID, schema, node.Parameters)
	if err != nil {
		// Validation failure: execute is never invoked.
		return r.fail(nodeID, started, err)
	}

	inputs := r.assembleInputs(node)

	rc := &domain.RunContext{
		ExecutionID: r.record.ID,
		WorkflowID:  r.def.ID,
		NodeID:      node.ID,
		NodeName:    node.Name,
		UserID:      r.opts.UserID,
		StartedAt:   started,
		Caller:      r.executor.workflowCaller(),
	}

	output, err := invoke(ctx, typeDef, inputs, params, rc)
	if err != nil {
		r.executor.logger.Error("node execution failed",
			"execution_id", r.record.ID,
			"node_id", node.ID,
			"node_type", node.Type,
			"error", err.Error(),
		)
		return r.fail(nodeID, started, err)
	}

	stored, cloneErr := output.Clone()
	if cloneErr != nil {
		return r.fail(nodeID, started, &domain.ExecutionFailure{NodeID: nodeID, Err: cloneErr})
	}

	r.statuses[nodeID] = domain.NodeRunSuccess
	r.outputs[nodeID] = stored

	r.executor.logger.Debug("node executed",
		"execution_id", r.record.ID,
		"node_id", node.ID,
		"node_type", node.Type,
		"duration", time.Since(started),
	)

	return domain.NodeExecutionResult{
		NodeID:    nodeID,
		Status:    domain.NodeRunSuccess,
		Output:    stored,
		StartedAt: started,
		Duration:  time.Since(started),
	}
}

// upstreamFailure reports whether any upstream node errored, directly or
// transitively, and names the original failed ancestor.
func (r *runState) upstreamFailure(nodeID string) (string, bool) {
	for _, conn := range r.graph.incoming[nodeID] {
		src := conn.SourceNode
		if r.statuses[src] == domain.NodeRunError {
			return src, true
		}
		if ancestor, blocked := r.blockedBy[src]; blocked {
			return ancestor, true
		}
	}
	return "", false
}

// assembleInputs builds the node's input envelope from its declared
// connections, appending fan-in contributions in connection declaration
// order. A start node additionally receives the wrapped trigger payload
// ahead of any connection data.
func (r *runState) assembleInputs(node *domain.WorkflowNode) domain.Envelope {
	inputs := domain.Envelope{}

	if r.startSet[node.ID] && r.opts.Payload != nil {
		trigger := domain.WrapPayload(r.opts.Payload)
		for port, runs := range trigger {
			inputs[port] = append(inputs[port], runs...)
		}
	}

	for _, conn := range r.graph.incoming[node.ID] {
		// Skipped and errored sources contribute no data for this run.
		if r.statuses[conn.SourceNode] != domain.NodeRunSuccess {
			continue
		}

		sourcePort := conn.SourcePort
		if sourcePort == "" {
			sourcePort = domain.MainPort
		}
		targetPort := conn.TargetPort
		if targetPort == "" {
			targetPort = domain.MainPort
		}

		runs := r.outputs[conn.SourceNode].Runs(sourcePort)
		if len(runs) == 0 {
			continue
		}
		inputs[targetPort] = append(inputs[targetPort], runs...)
	}

	return inputs
}

func (r *runState) skip(nodeID string, started time.Time, reason string) domain.NodeExecutionResult {
	r.statuses[nodeID] = domain.NodeRunSkipped

	r.executor.logger.Debug("node skipped",
		"execution_id", r.record.ID,
		"node_id", nodeID,
		"reason", reason,
	)

	return domain.NodeExecutionResult{
		NodeID:     nodeID,
		Status:     domain.NodeRunSkipped,
		SkipReason: reason,
		StartedAt:  started,
		Duration:   time.Since(started),
	}
}

func (r *runState) fail(nodeID string, started time.Time, err error) domain.NodeExecutionResult {
	r.statuses[nodeID] = domain.NodeRunError

	return domain.NodeExecutionResult{
		NodeID:    nodeID,
		Status:    domain.NodeRunError,
		Error:     domain.NormalizeError(err),
		StartedAt: started,
		Duration:  time.Since(started),
	}
}

// invoke runs the node type's execute operation, converting a panic into a
// structured error carrying the captured stack.
func invoke(ctx context.Context, typeDef *domain.NodeTypeDefinition, inputs domain.Envelope, params map[string]interface{}, rc *domain.RunContext) (output domain.Envelope, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.PanicError{
				NodeID: rc.NodeID,
				Value:  rec,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	return typeDef.Execute(ctx, inputs, params, rc)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
