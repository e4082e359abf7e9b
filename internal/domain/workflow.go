package domain

// Position is a 2D canvas layout coordinate. Layout only, never consulted
// during execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is a configured occurrence of a node type within a workflow.
// Read-only from the engine's perspective during a run.
type WorkflowNode struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Position    Position               `json:"position"`
	Disabled    bool                   `json:"disabled,omitempty"`
	ParentGroup string                 `json:"parent_group,omitempty"`
	KeepInGroup bool                   `json:"keep_in_group,omitempty"`
}

// Connection is a directed data edge between two node ports. Multiple
// connections may target the same input port; their merge order is their
// declaration order in the workflow definition.
type Connection struct {
	SourceNode string `json:"source_node"`
	SourcePort string `json:"source_port"`
	TargetNode string `json:"target_node"`
	TargetPort string `json:"target_port"`
}

// WorkflowDefinition is the full user-authored graph: an ordered node
// sequence, an ordered connection sequence, and a settings blob. It is
// treated as an immutable value once captured into a snapshot.
type WorkflowDefinition struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Nodes       []WorkflowNode         `json:"nodes"`
	Connections []Connection           `json:"connections"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

// NodeByID returns the node with the given id and whether it exists.
func (w *WorkflowDefinition) NodeByID(id string) (*WorkflowNode, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// NodeIndex returns the declaration index of the node with the given id,
// or -1. Declaration order is the deterministic tie-break for execution.
func (w *WorkflowDefinition) NodeIndex(id string) int {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}
