package domain

import (
	"crypto/sha256"
	"encoding/hex"

	json "github.com/goccy/go-json"
)

// SnapshotVersion is stamped on every new execution record. Bumped when the
// structural encoding below changes shape.
const SnapshotVersion = 1

// SnapshotWorkflow deep-copies a workflow definition by value. The copy
// shares no mutable state with the original, so later edits to the live
// workflow can never leak into a persisted record.
func SnapshotWorkflow(def *WorkflowDefinition) (*WorkflowDefinition, error) {
	if def == nil {
		return nil, nil
	}

	data, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}

	var out WorkflowDefinition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// structuralNode is the subset of a node that participates in the snapshot
// fingerprint. Display names and layout positions are excluded: moving a
// node on the canvas does not change what would execute.
type structuralNode struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Disabled   bool                   `json:"disabled,omitempty"`
}

type structuralShape struct {
	Nodes       []structuralNode `json:"nodes"`
	Connections []Connection     `json:"connections"`
}

// SnapshotHash computes a structural fingerprint of the workflow: SHA-256
// over the canonical encoding of node identity/type/parameters/disabled and
// the connection list, in declaration order. Computed for future diffing;
// not currently consumed by the engine.
func SnapshotHash(def *WorkflowDefinition) (string, error) {
	if def == nil {
		return "", nil
	}

	shape := structuralShape{
		Nodes:       make([]structuralNode, len(def.Nodes)),
		Connections: def.Connections,
	}
	for i, n := range def.Nodes {
		shape.Nodes[i] = structuralNode{
			ID:         n.ID,
			Type:       n.Type,
			Parameters: n.Parameters,
			Disabled:   n.Disabled,
		}
	}

	data, err := json.Marshal(shape)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
