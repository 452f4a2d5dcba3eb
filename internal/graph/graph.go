// Package graph builds a leveled execution graph from a validated workflow
// document. Leveling uses Kahn's in-degree peeling: level 0 holds every node
// with no dependencies, and each later level holds the nodes freed by the
// previous one. A non-empty remainder after peeling is a cycle and rejects
// the whole graph.
package graph

import (
	"github.com/defai-digital/AutomatosX-sub001/internal/policy"
	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

// Meta carries per-node execution metadata resolved at build time.
type Meta struct {
	// TimeoutMS is the author's timeout hint in milliseconds, nil when the
	// document left it unset.
	TimeoutMS *float64
	// MaxRetries is the author's retry hint, nil when unset.
	MaxRetries *int
	// Weights is the resolved policy vector attached to every node.
	Weights policy.Weights
}

// Node is one schedulable unit, one-to-one with a validated actor.
type Node struct {
	ID           string
	Agent        string
	Description  string
	Dependencies []string
	Meta         Meta
}

// Graph is a validated, leveled dependency graph. Graphs are immutable after
// Build and safe for concurrent reads.
type Graph struct {
	// Nodes lists every node in declaration order.
	Nodes []*Node
	// Levels groups node ids by execution level. Within a level, ids keep
	// declaration order.
	Levels [][]string
	// Weights is the resolved policy vector for the whole run.
	Weights policy.Weights
	// PolicyDefaulted reports whether the resolver fell back to goal
	// defaults instead of using the author's weights.
	PolicyDefaulted bool

	byID       map[string]*Node
	dependents map[string][]string
	levelOf    map[string]int
}

// Build constructs a leveled graph from a validated document. It returns an
// error for duplicate ids, unknown dependency references, and cycles; it
// never drops an edge to make a document fit.
func Build(doc *spec.Document) (*Graph, error) {
	weights, defaulted := policy.Resolve(doc.Policy)

	g := &Graph{
		Weights:         weights,
		PolicyDefaulted: defaulted,
		byID:            make(map[string]*Node, len(doc.Actors)),
		dependents:      make(map[string][]string, len(doc.Actors)),
		levelOf:         make(map[string]int, len(doc.Actors)),
	}

	for _, actor := range doc.Actors {
		if _, exists := g.byID[actor.ID]; exists {
			return nil, &DuplicateNodeError{NodeID: actor.ID}
		}
		node := &Node{
			ID:           actor.ID,
			Agent:        actor.Agent,
			Description:  actor.Description,
			Dependencies: dedupe(actor.DependsOn),
			Meta: Meta{
				TimeoutMS:  actor.Hints.TimeoutMS,
				MaxRetries: actor.Hints.MaxRetries,
				Weights:    weights,
			},
		}
		g.Nodes = append(g.Nodes, node)
		g.byID[actor.ID] = node
	}

	for _, node := range g.Nodes {
		for _, dep := range node.Dependencies {
			if _, ok := g.byID[dep]; !ok {
				return nil, &UnknownDependencyError{NodeID: node.ID, Ref: dep}
			}
			g.dependents[dep] = append(g.dependents[dep], node.ID)
		}
	}

	if err := g.computeLevels(); err != nil {
		return nil, err
	}

	return g, nil
}

// computeLevels peels zero-in-degree nodes round by round. Each round becomes
// one level; ties within a round keep declaration order. Nodes still holding
// in-degree after peeling are cycle members.
func (g *Graph) computeLevels() error {
	indegree := make(map[string]int, len(g.Nodes))
	for _, node := range g.Nodes {
		indegree[node.ID] = len(node.Dependencies)
	}

	placed := make(map[string]bool, len(g.Nodes))
	for len(placed) < len(g.Nodes) {
		var level []string
		for _, node := range g.Nodes {
			if !placed[node.ID] && indegree[node.ID] == 0 {
				level = append(level, node.ID)
			}
		}
		if len(level) == 0 {
			return g.cycleError(placed)
		}
		for _, id := range level {
			placed[id] = true
			g.levelOf[id] = len(g.Levels)
			for _, dependent := range g.dependents[id] {
				indegree[dependent]--
			}
		}
		g.Levels = append(g.Levels, level)
	}

	return nil
}

// cycleError builds a CycleError from the unplaced remainder, walking it to
// recover one concrete cycle path for the message.
func (g *Graph) cycleError(placed map[string]bool) error {
	var members []string
	for _, node := range g.Nodes {
		if !placed[node.ID] {
			members = append(members, node.ID)
		}
	}

	remainder := make(map[string]bool, len(members))
	for _, id := range members {
		remainder[id] = true
	}

	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	for _, id := range members {
		if !visited[id] {
			if cycle := findCycle(id, g.byID, remainder, visited, recStack, nil); cycle != nil {
				return &CycleError{Path: cycle, Members: members}
			}
		}
	}

	return &CycleError{Members: members}
}

// findCycle performs depth-first search restricted to the remainder set.
func findCycle(id string, nodes map[string]*Node, remainder, visited, recStack map[string]bool, path []string) []string {
	visited[id] = true
	recStack[id] = true
	path = append(path, id)

	for _, dep := range nodes[id].Dependencies {
		if !remainder[dep] {
			continue
		}
		if !visited[dep] {
			if cycle := findCycle(dep, nodes, remainder, visited, recStack, path); cycle != nil {
				return cycle
			}
		} else if recStack[dep] {
			return closeCycle(path, dep)
		}
	}

	recStack[id] = false
	return nil
}

// closeCycle trims the DFS path to the cycle portion and repeats the start.
func closeCycle(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return append(path[i:], start)
		}
	}
	return append(path, start)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	node, ok := g.byID[id]
	return node, ok
}

// Dependents returns the ids of nodes that depend on the given id, in
// declaration order.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// LevelOf returns the execution level of a node, or -1 for unknown ids.
func (g *Graph) LevelOf(id string) int {
	if level, ok := g.levelOf[id]; ok {
		return level
	}
	return -1
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// dedupe removes repeated ids while preserving first-occurrence order.
func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
