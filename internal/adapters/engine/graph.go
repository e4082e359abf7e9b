package engine

import (
	"sort"

	"github.com/loomworks/weft/internal/domain"
)

// graph is the dependency view of a workflow definition: connection lists
// per node, in declaration order, plus each node's declaration index for
// deterministic tie-breaking.
type graph struct {
	incoming map[string][]domain.Connection
	outgoing map[string][]domain.Connection
	index    map[string]int
}

// buildGraph validates the structural integrity of the definition and
// indexes its edges. Every connection endpoint must name an existing node.
// Empty port names are normalized to the main port.
func buildGraph(def *domain.WorkflowDefinition) (*graph, error) {
	g := &graph{
		incoming: make(map[string][]domain.Connection),
		outgoing: make(map[string][]domain.Connection),
		index:    make(map[string]int, len(def.Nodes)),
	}

	for i, node := range def.Nodes {
		if node.ID == "" {
			return nil, domain.NewStructuralError("", "node at index %d has an empty id", i)
		}
		if _, dup := g.index[node.ID]; dup {
			return nil, domain.NewStructuralError(node.ID, "duplicate node id")
		}
		g.index[node.ID] = i
	}

	for _, conn := range def.Connections {
		if conn.SourcePort == "" {
			conn.SourcePort = domain.MainPort
		}
		if conn.TargetPort == "" {
			conn.TargetPort = domain.MainPort
		}

		if _, ok := g.index[conn.SourceNode]; !ok {
			return nil, domain.NewStructuralError(conn.SourceNode, "connection references nonexistent source node")
		}
		if _, ok := g.index[conn.TargetNode]; !ok {
			return nil, domain.NewStructuralError(conn.TargetNode, "connection references nonexistent target node")
		}

		g.outgoing[conn.SourceNode] = append(g.outgoing[conn.SourceNode], conn)
		g.incoming[conn.TargetNode] = append(g.incoming[conn.TargetNode], conn)
	}

	return g, nil
}

// startNodes resolves the entry points of a run: the explicit start node if
// one was given, otherwise every node with no incoming connections, in
// declaration order.
func (g *graph) startNodes(def *domain.WorkflowDefinition, startNodeID string) ([]string, error) {
	if startNodeID != "" {
		if _, ok := g.index[startNodeID]; !ok {
			return nil, domain.NewStructuralError(startNodeID, "start node does not exist in workflow")
		}
		return []string{startNodeID}, nil
	}

	var roots []string
	for _, node := range def.Nodes {
		if len(g.incoming[node.ID]) == 0 {
			roots = append(roots, node.ID)
		}
	}
	return roots, nil
}

// reachable computes the forward closure of the start nodes.
func (g *graph) reachable(starts []string) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string(nil), starts...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		for _, conn := range g.outgoing[id] {
			if !seen[conn.TargetNode] {
				queue = append(queue, conn.TargetNode)
			}
		}
	}
	return seen
}

// topoOrder returns a topological order over the reachable subgraph. Ties
// among ready nodes are broken by declaration index, making runs
// reproducible. A leftover node means the subgraph has a cycle.
func (g *graph) topoOrder(reachable map[string]bool) ([]string, error) {
	indegree := make(map[string]int, len(reachable))
	for id := range reachable {
		count := 0
		for _, conn := range g.incoming[id] {
			if reachable[conn.SourceNode] {
				count++
			}
		}
		indegree[id] = count
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	g.sortByIndex(ready)

	order := make([]string, 0, len(reachable))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		released := false
		for _, conn := range g.outgoing[id] {
			if !reachable[conn.TargetNode] {
				continue
			}
			indegree[conn.TargetNode]--
			if indegree[conn.TargetNode] == 0 {
				ready = append(ready, conn.TargetNode)
				released = true
			}
		}
		if released {
			g.sortByIndex(ready)
		}
	}

	if len(order) != len(reachable) {
		return nil, domain.NewStructuralError("", "workflow graph contains a cycle")
	}
	return order, nil
}

func (g *graph) sortByIndex(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return g.index[ids[i]] < g.index[ids[j]]
	})
}
