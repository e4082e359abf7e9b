package storage

import (
	"context"
	"log/slog"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
	"github.com/loomworks/weft/internal/xjson"
)

// WorkflowStore persists workflow definitions on top of the key-value store.
type WorkflowStore struct {
	store  ports.Storage
	logger *slog.Logger
}

func NewWorkflowStore(store ports.Storage, logger *slog.Logger) *WorkflowStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkflowStore{
		store:  store,
		logger: logger.With("component", "workflow-store"),
	}
}

func (ws *WorkflowStore) Save(ctx context.Context, def *domain.WorkflowDefinition) error {
	if def == nil || def.ID == "" {
		return &domain.StructuralError{Message: "workflow definition requires an id"}
	}

	data, err := xjson.Marshal(def)
	if err != nil {
		return domain.NewStorageError("save", def.ID, err)
	}

	if err := ws.store.Put(ctx, domain.WorkflowKey(def.ID), data); err != nil {
		return err
	}

	ws.logger.Debug("workflow definition saved",
		"workflow_id", def.ID,
		"nodes", len(def.Nodes),
		"connections", len(def.Connections),
	)
	return nil
}

func (ws *WorkflowStore) Get(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error) {
	data, err := ws.store.Get(ctx, domain.WorkflowKey(workflowID))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("workflow", workflowID)
		}
		return nil, err
	}

	var def domain.WorkflowDefinition
	if err := xjson.Unmarshal(data, &def); err != nil {
		return nil, domain.NewStorageError("decode", workflowID, err)
	}
	return &def, nil
}

func (ws *WorkflowStore) Delete(ctx context.Context, workflowID string) error {
	return ws.store.Delete(ctx, domain.WorkflowKey(workflowID))
}

func (ws *WorkflowStore) List(ctx context.Context) ([]*domain.WorkflowDefinition, error) {
	kvs, err := ws.store.List(ctx, domain.WorkflowKeyPrefix())
	if err != nil {
		return nil, err
	}

	defs := make([]*domain.WorkflowDefinition, 0, len(kvs))
	for _, kv := range kvs {
		var def domain.WorkflowDefinition
		if err := xjson.Unmarshal(kv.Value, &def); err != nil {
			ws.logger.Error("skipping undecodable workflow definition", "key", kv.Key, "error", err.Error())
			continue
		}
		defs = append(defs, &def)
	}
	return defs, nil
}
