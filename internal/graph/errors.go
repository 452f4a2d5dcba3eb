package graph

import (
	"fmt"
	"strings"
)

// CycleError represents a cycle detected in actor dependencies.
type CycleError struct {
	// Path is one concrete cycle, listed in dependency order with the
	// starting id repeated at the end.
	Path []string
	// Members is every node id caught in a cycle, in declaration order.
	Members []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("cycle detected in actor dependencies: %s", strings.Join(e.Path, " -> "))
	}
	if len(e.Members) > 0 {
		return fmt.Sprintf("cycle detected among actors: [%s]", strings.Join(e.Members, ", "))
	}
	return "cycle detected in actor dependencies"
}

// UnknownDependencyError represents an edge pointing at a node that was
// never declared.
type UnknownDependencyError struct {
	// NodeID is the id of the node containing the invalid reference.
	NodeID string
	// Ref is the referenced node id that does not exist.
	Ref string
}

// Error implements the error interface.
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("actor %q depends on unknown actor %q", e.NodeID, e.Ref)
}

// DuplicateNodeError represents two nodes sharing the same id.
type DuplicateNodeError struct {
	// NodeID is the duplicated id.
	NodeID string
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate actor id %q", e.NodeID)
}
