package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/weft/internal/domain"
)

func findBuiltin(t *testing.T, name string) *domain.NodeTypeDefinition {
	t.Helper()
	for _, def := range Builtins() {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("builtin '%s' not found", name)
	return nil
}

func TestBuiltins_Complete(t *testing.T) {
	names := make([]string, 0)
	for _, def := range Builtins() {
		require.NotEmpty(t, def.Name)
		require.NotNil(t, def.Execute)
		names = append(names, def.Name)
	}
	assert.ElementsMatch(t, []string{"workflowTrigger", "noop", "set", "merge", "transform", "executeWorkflow"}, names)
}

func TestWorkflowTrigger_PassesInputThrough(t *testing.T) {
	def := findBuiltin(t, "workflowTrigger")

	in := domain.WrapPayload(map[string]interface{}{"x": 1})
	out, err := def.Execute(context.Background(), in, nil, &domain.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWorkflowTrigger_EmptyInputYieldsOneItem(t *testing.T) {
	def := findBuiltin(t, "workflowTrigger")

	out, err := def.Execute(context.Background(), domain.Envelope{}, nil, &domain.RunContext{})
	require.NoError(t, err)
	_, ok := out.FirstItem()
	assert.True(t, ok, "downstream nodes always get at least one item to run over")
}

func TestNoop(t *testing.T) {
	def := findBuiltin(t, "noop")

	in := domain.WrapPayload("pass")
	out, err := def.Execute(context.Background(), in, nil, &domain.RunContext{})
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSet_WritesFields(t *testing.T) {
	def := findBuiltin(t, "set")

	in := domain.WrapPayload(map[string]interface{}{"existing": "kept"})
	out, err := def.Execute(context.Background(), in, map[string]interface{}{
		"values": map[string]interface{}{
			"status":      "done",
			"nested.flag": true,
		},
	}, &domain.RunContext{})
	require.NoError(t, err)

	payload, ok := out.FirstItem()
	require.True(t, ok)
	m := payload.(map[string]interface{})
	assert.Equal(t, "kept", m["existing"])
	assert.Equal(t, "done", m["status"])
	assert.Equal(t, true, m["nested"].(map[string]interface{})["flag"])
}

func TestSet_NoInputEmitsConfiguredValues(t *testing.T) {
	def := findBuiltin(t, "set")

	out, err := def.Execute(context.Background(), domain.Envelope{}, map[string]interface{}{
		"values": map[string]interface{}{"a": float64(1)},
	}, &domain.RunContext{})
	require.NoError(t, err)

	payload, ok := out.FirstItem()
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, payload)
}

func TestMerge_FlattensRuns(t *testing.T) {
	def := findBuiltin(t, "merge")

	in := domain.Envelope{
		domain.MainPort: [][]domain.Item{
			{{JSON: "a"}, {JSON: "b"}},
			{{JSON: "c"}},
		},
	}

	out, err := def.Execute(context.Background(), in, nil, &domain.RunContext{})
	require.NoError(t, err)

	runs := out.Runs(domain.MainPort)
	require.Len(t, runs, 1, "merge collapses fan-in runs into one")
	require.Len(t, runs[0], 3)
	assert.Equal(t, "a", runs[0][0].JSON)
	assert.Equal(t, "c", runs[0][2].JSON)
}

type stubCaller struct {
	gotUserID     string
	gotWorkflowID string
	gotPayload    interface{}
	record        *domain.ExecutionRecord
	err           error
}

func (s *stubCaller) Trigger(_ context.Context, userID, workflowID string, payload interface{}) (*domain.ExecutionRecord, error) {
	s.gotUserID = userID
	s.gotWorkflowID = workflowID
	s.gotPayload = payload
	return s.record, s.err
}

func TestExecuteWorkflow_TriggersTarget(t *testing.T) {
	def := findBuiltin(t, "executeWorkflow")

	caller := &stubCaller{
		record: &domain.ExecutionRecord{
			ID:         "ex-1",
			WorkflowID: "wf-target",
			Status:     domain.ExecutionStatusSuccess,
		},
	}
	rc := &domain.RunContext{UserID: "u1", Caller: caller}

	in := domain.WrapPayload(map[string]interface{}{"order": float64(7)})
	out, err := def.Execute(context.Background(), in, map[string]interface{}{"workflowId": "wf-target"}, rc)
	require.NoError(t, err)

	assert.Equal(t, "u1", caller.gotUserID)
	assert.Equal(t, "wf-target", caller.gotWorkflowID)
	assert.Equal(t, map[string]interface{}{"order": float64(7)}, caller.gotPayload)

	payload, ok := out.FirstItem()
	require.True(t, ok)
	m := payload.(map[string]interface{})
	assert.Equal(t, "ex-1", m["execution_id"])
	assert.Equal(t, "wf-target", m["workflow_id"])
	assert.Equal(t, "success", m["status"])
}

func TestExecuteWorkflow_NoCallerWired(t *testing.T) {
	def := findBuiltin(t, "executeWorkflow")

	_, err := def.Execute(context.Background(), domain.Envelope{}, map[string]interface{}{"workflowId": "wf"}, &domain.RunContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
