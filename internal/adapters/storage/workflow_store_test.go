package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/weft/internal/domain"
)

func TestWorkflowStore_SaveGet(t *testing.T) {
	ws := NewWorkflowStore(NewMemoryStore(), nil)
	ctx := context.Background()

	def := &domain.WorkflowDefinition{
		ID:   "wf-1",
		Name: "orders",
		Nodes: []domain.WorkflowNode{
			{ID: "a", Type: "noop", Parameters: map[string]interface{}{"k": "v"}},
		},
		Connections: []domain.Connection{
			{SourceNode: "a", TargetNode: "a"},
		},
	}

	require.NoError(t, ws.Save(ctx, def))

	got, err := ws.Get(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Name)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "v", got.Nodes[0].Parameters["k"])
	require.Len(t, got.Connections, 1)
}

func TestWorkflowStore_SaveRequiresID(t *testing.T) {
	ws := NewWorkflowStore(NewMemoryStore(), nil)

	assert.Error(t, ws.Save(context.Background(), &domain.WorkflowDefinition{Name: "no id"}))
	assert.Error(t, ws.Save(context.Background(), nil))
}

func TestWorkflowStore_GetMissing(t *testing.T) {
	ws := NewWorkflowStore(NewMemoryStore(), nil)

	_, err := ws.Get(context.Background(), "absent")
	assert.True(t, domain.IsNotFound(err))
}

func TestWorkflowStore_Delete(t *testing.T) {
	ws := NewWorkflowStore(NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, ws.Save(ctx, &domain.WorkflowDefinition{ID: "wf-1"}))
	require.NoError(t, ws.Delete(ctx, "wf-1"))

	_, err := ws.Get(ctx, "wf-1")
	assert.True(t, domain.IsNotFound(err))
}

func TestWorkflowStore_List(t *testing.T) {
	ws := NewWorkflowStore(NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, ws.Save(ctx, &domain.WorkflowDefinition{ID: "wf-b"}))
	require.NoError(t, ws.Save(ctx, &domain.WorkflowDefinition{ID: "wf-a"}))

	defs, err := ws.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "wf-a", defs[0].ID)
	assert.Equal(t, "wf-b", defs[1].ID)
}
