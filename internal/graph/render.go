package graph

import (
	"fmt"
	"strings"
)

// RenderASCII generates an ASCII representation of the leveled graph. The
// output shows levels in execution order with their tasks and a dependency
// list. Uses portable ASCII characters only (no Unicode).
func RenderASCII(name string, g *Graph) string {
	if g.Len() == 0 {
		return "Workflow has no tasks to visualize.\n"
	}

	var sb strings.Builder
	sb.WriteString(renderHeader(name, g))
	sb.WriteString("\n")

	for i, ids := range g.Levels {
		sb.WriteString(renderLevel(g, i, ids))

		if i < len(g.Levels)-1 {
			sb.WriteString("    |\n    v\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(renderDependencies(g))
	sb.WriteString("\n")
	sb.WriteString(renderLegend())

	return sb.String()
}

// renderHeader renders the workflow title and summary.
func renderHeader(name string, g *Graph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workflow: %s\n", name)
	sb.WriteString(strings.Repeat("=", len(name)+10) + "\n")
	fmt.Fprintf(&sb, "Levels: %d  |  Tasks: %d\n", len(g.Levels), g.Len())
	return sb.String()
}

// renderLevel renders a single level with its tasks in execution order.
func renderLevel(g *Graph, idx int, ids []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[level %d]\n", idx)

	for i, id := range ids {
		prefix := "  |-"
		if i == len(ids)-1 {
			prefix = "  +-"
		}
		sb.WriteString(renderTaskLine(g, prefix, id))
	}

	return sb.String()
}

// renderTaskLine renders one task with its agent and a dependency marker.
func renderTaskLine(g *Graph, prefix, id string) string {
	node, ok := g.Node(id)
	if !ok {
		return fmt.Sprintf("%s %s\n", prefix, id)
	}

	depMarker := ""
	if len(node.Dependencies) > 0 {
		depMarker = " *"
	}
	return fmt.Sprintf("%s %s (%s)%s\n", prefix, node.ID, node.Agent, depMarker)
}

// renderDependencies renders the task dependency section.
func renderDependencies(g *Graph) string {
	var lines []string
	for _, node := range g.Nodes {
		if len(node.Dependencies) > 0 {
			lines = append(lines, fmt.Sprintf("  %s --> %s\n", node.ID, strings.Join(node.Dependencies, ", ")))
		}
	}
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Task Dependencies:\n")
	sb.WriteString("------------------\n")
	for _, line := range lines {
		sb.WriteString(line)
	}
	return sb.String()
}

// renderLegend renders the legend explaining symbols.
func renderLegend() string {
	var sb strings.Builder
	sb.WriteString("Legend:\n")
	sb.WriteString("  * = has dependencies (see list above)\n")
	sb.WriteString("  --> = depends on\n")
	return sb.String()
}

// RenderCompact generates a compact single-line representation.
// Format: L0: [fetch, lint] -> L1: [build] -> L2: [ship]
func RenderCompact(g *Graph) string {
	if g.Len() == 0 {
		return "Empty workflow"
	}

	parts := make([]string, len(g.Levels))
	for i, ids := range g.Levels {
		parts[i] = fmt.Sprintf("L%d: [%s]", i, strings.Join(ids, ", "))
	}

	return strings.Join(parts, " -> ")
}
