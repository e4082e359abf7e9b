package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomworks/weft/internal/adapters/bridge"
	"github.com/loomworks/weft/internal/adapters/engine"
	"github.com/loomworks/weft/internal/adapters/recorder"
	"github.com/loomworks/weft/internal/adapters/registry"
	"github.com/loomworks/weft/internal/adapters/storage"
	"github.com/loomworks/weft/internal/adapters/validation"
	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/nodes"
	"github.com/loomworks/weft/internal/ports"
)

// Manager assembles the engine: storage, node type registry, parameter
// validator, graph executor, execution recorder, and the cross-workflow
// trigger bridge. It is the single entry point hosts integrate against.
type Manager struct {
	cfg    *domain.Config
	logger *slog.Logger

	store     ports.Storage
	workflows ports.WorkflowStore
	registry  *registry.Registry
	validator *validation.Validator
	recorder  *recorder.Recorder
	executor  *engine.Executor
	bridge    *bridge.Bridge
	auth      ports.Authorizer
}

// Option adjusts manager assembly.
type Option func(*Manager)

// WithAuthorizer installs the authorization capability consulted before a
// run starts. The default permits every caller.
func WithAuthorizer(auth ports.Authorizer) Option {
	return func(m *Manager) {
		m.auth = auth
	}
}

// WithStorage substitutes the durable store, bypassing the configured
// badger/in-memory selection.
func WithStorage(store ports.Storage) Option {
	return func(m *Manager) {
		m.store = store
	}
}

func NewManager(cfg *domain.Config, opts ...Option) (*Manager, error) {
	cfg = cfg.Normalized()

	m := &Manager{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "manager"),
		auth:   AllowAll{},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		if cfg.Storage.InMemory {
			m.store = storage.NewMemoryStore()
		} else {
			store, err := storage.NewBadgerStore(cfg.DataDir, cfg.Storage.SyncWrites, cfg.Logger)
			if err != nil {
				return nil, err
			}
			m.store = store
		}
	}

	m.workflows = storage.NewWorkflowStore(m.store, cfg.Logger)
	m.registry = registry.New(cfg.Registry.LoadTimeout, cfg.Logger)
	m.validator = validation.New(cfg.Logger)
	m.recorder = recorder.New(m.store, cfg.Logger)
	m.executor = engine.New(m.registry, m.validator, m.recorder, cfg.Logger)
	m.bridge = bridge.New(m.workflows, m.executor, m.auth, cfg.Engine.MaxCallDepth, cfg.Logger)
	m.executor.SetCaller(m.bridge)

	if cfg.Engine.DisableBuiltins {
		m.registry.LoadBuiltins(nil)
	} else {
		m.registry.LoadBuiltins(nodes.Builtins)
	}

	return m, nil
}

// RegisterNodeType adds or replaces a node type definition. Safe to call at
// any time, including before built-in loading completes.
func (m *Manager) RegisterNodeType(def *domain.NodeTypeDefinition) error {
	return m.registry.Register(def)
}

func (m *Manager) UnregisterNodeType(typeName string) error {
	return m.registry.Unregister(typeName)
}

// SetNodeTypeActive toggles whether the type may be used in new executions.
func (m *Manager) SetNodeTypeActive(typeName string, active bool) error {
	return m.registry.SetActive(typeName, active)
}

func (m *Manager) ListNodeTypes() []string {
	return m.registry.List()
}

// ResolveSchema resolves the (possibly parameter-dependent) property schema
// of a node type, awaiting built-in loading if necessary.
func (m *Manager) ResolveSchema(ctx context.Context, typeName string, parameters map[string]interface{}) ([]domain.PropertyDescriptor, error) {
	return m.registry.ResolveSchema(ctx, typeName, parameters)
}

func (m *Manager) SaveWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error {
	return m.workflows.Save(ctx, def)
}

func (m *Manager) GetWorkflow(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error) {
	return m.workflows.Get(ctx, workflowID)
}

func (m *Manager) DeleteWorkflow(ctx context.Context, workflowID string) error {
	return m.workflows.Delete(ctx, workflowID)
}

func (m *Manager) ListWorkflows(ctx context.Context) ([]*domain.WorkflowDefinition, error) {
	return m.workflows.List(ctx)
}

// Run executes a stored workflow and blocks until the run reaches a
// terminal state, returning the completed execution record.
func (m *Manager) Run(ctx context.Context, workflowID string, opts ports.RunOptions) (*domain.ExecutionRecord, error) {
	allowed, err := m.auth.CanAccess(ctx, opts.UserID, workflowID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("user '%s' cannot run workflow '%s': %w", opts.UserID, workflowID, domain.ErrUnauthorized)
	}

	def, err := m.workflows.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return m.executor.Run(ctx, def, opts)
}

// CancelExecution requests cancellation of an in-flight run; it takes
// effect at the next node boundary. Reports whether a running execution
// with that id was found.
func (m *Manager) CancelExecution(recordID string) bool {
	return m.executor.Cancel(recordID)
}

func (m *Manager) GetExecutionRecord(ctx context.Context, recordID string) (*domain.ExecutionRecord, error) {
	return m.recorder.Get(ctx, recordID)
}

// ListExecutions returns the run history of a workflow, newest first.
func (m *Manager) ListExecutions(ctx context.Context, workflowID string) ([]*domain.ExecutionRecord, error) {
	return m.recorder.ListForWorkflow(ctx, workflowID)
}

// WorkflowForExecution returns the definition a record ran against: its
// snapshot when one was captured, otherwise the live workflow. Records
// created before snapshotting existed degrade gracefully this way.
func (m *Manager) WorkflowForExecution(ctx context.Context, recordID string) (*domain.WorkflowDefinition, error) {
	record, err := m.recorder.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if record.HasSnapshot() {
		return record.WorkflowSnapshot, nil
	}

	m.logger.Debug("legacy record without snapshot, falling back to live workflow",
		"execution_id", recordID,
		"workflow_id", record.WorkflowID,
	)
	return m.workflows.Get(ctx, record.WorkflowID)
}

// TriggerWorkflow invokes a workflow on behalf of another workflow or an
// external caller, wrapping the payload in the standard envelope.
func (m *Manager) TriggerWorkflow(ctx context.Context, userID, workflowID string, payload interface{}) (*domain.ExecutionRecord, error) {
	return m.bridge.Trigger(ctx, userID, workflowID, payload)
}

// RegistryReady reports whether built-in node type loading has completed.
// Lookups issued earlier block until it has; this is informational.
func (m *Manager) RegistryReady() bool {
	return m.registry.Ready()
}

func (m *Manager) Close() error {
	m.logger.Info("shutting down")
	return m.store.Close()
}
