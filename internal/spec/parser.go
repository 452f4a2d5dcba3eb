package spec

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a raw workflow document into a validated Document.
// It performs no I/O and is total: the result is either a fully validated
// Document or a descriptive error, never a partial value. Parsing the same
// bytes twice yields structurally equal Documents.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &ParseError{Message: "empty document"}
	}

	return parseRoot(root.Content[0])
}

// ParseFile reads and parses a workflow document from a file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// depRef records a single dependency reference with its source location so
// references can be validated after all actor ids are collected.
type depRef struct {
	actorID string
	ref     string
	line    int
	column  int
}

// parseRoot walks the root mapping and validates the document in order:
// metadata, actors, dependency references, resource hints. Policy parsing is
// lenient; invalid policy input degrades to resolver defaults downstream.
func parseRoot(node *yaml.Node) (*Document, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &TypeError{Path: "root", Want: "mapping", Got: kindName(node), Line: node.Line, Column: node.Column}
	}

	var metadataNode, actorsNode, policyNode *yaml.Node
	for i := 0; i < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "metadata":
			metadataNode = node.Content[i+1]
		case "actors":
			actorsNode = node.Content[i+1]
		case "policy":
			policyNode = node.Content[i+1]
		}
	}

	doc := &Document{}

	meta, err := parseMetadata(metadataNode, node)
	if err != nil {
		return nil, err
	}
	doc.Metadata = meta

	actors, refs, err := parseActors(actorsNode, node)
	if err != nil {
		return nil, err
	}
	doc.Actors = actors

	if err := validateDependencyRefs(actors, refs); err != nil {
		return nil, err
	}

	doc.Policy = parsePolicy(policyNode)

	return doc, nil
}

// parseMetadata extracts and validates the metadata block.
func parseMetadata(node, root *yaml.Node) (Metadata, error) {
	if node == nil {
		return Metadata{}, &MissingFieldError{Field: "metadata", Context: "root", Line: root.Line, Column: root.Column}
	}
	if node.Kind != yaml.MappingNode {
		return Metadata{}, &TypeError{Path: "metadata", Want: "mapping", Got: kindName(node), Line: node.Line, Column: node.Column}
	}

	var meta Metadata
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "id":
			s, err := stringValue(value, "metadata.id")
			if err != nil {
				return Metadata{}, err
			}
			meta.ID = s
		case "name":
			s, err := stringValue(value, "metadata.name")
			if err != nil {
				return Metadata{}, err
			}
			meta.Name = s
		case "version":
			// Version is a free-form label; unquoted numeric versions like
			// 1.0 are accepted as written.
			if value.Kind == yaml.ScalarNode {
				meta.Version = value.Value
			}
		}
	}

	if strings.TrimSpace(meta.ID) == "" {
		return Metadata{}, &MissingFieldError{Field: "id", Context: "metadata", Line: node.Line, Column: node.Column}
	}
	if strings.TrimSpace(meta.Name) == "" {
		return Metadata{}, &MissingFieldError{Field: "name", Context: "metadata", Line: node.Line, Column: node.Column}
	}

	return meta, nil
}

// parseActors extracts the actor list along with every dependency reference
// encountered, for second-pass validation.
func parseActors(node, root *yaml.Node) ([]Actor, []depRef, error) {
	if node == nil {
		return nil, nil, &MissingFieldError{Field: "actors", Context: "root (at least one actor required)", Line: root.Line, Column: root.Column}
	}
	if node.Kind != yaml.SequenceNode {
		return nil, nil, &TypeError{Path: "actors", Want: "sequence", Got: kindName(node), Line: node.Line, Column: node.Column}
	}
	if len(node.Content) == 0 {
		return nil, nil, &MissingFieldError{Field: "actors", Context: "root (at least one actor required)", Line: node.Line, Column: node.Column}
	}

	actors := make([]Actor, 0, len(node.Content))
	var refs []depRef
	declared := make(map[string]int, len(node.Content))

	for i, actorNode := range node.Content {
		actor, actorRefs, err := parseActor(actorNode, i)
		if err != nil {
			return nil, nil, err
		}
		if first, dup := declared[actor.ID]; dup {
			return nil, nil, &DuplicateActorError{ActorID: actor.ID, FirstIndex: first, Line: actorNode.Line, Column: actorNode.Column}
		}
		declared[actor.ID] = i
		actors = append(actors, actor)
		refs = append(refs, actorRefs...)
	}

	return actors, refs, nil
}

// parseActor extracts a single actor entry. Fields are validated in schema
// order regardless of how keys are arranged in the document: id and agent
// first, then dependency entries, then resource hints.
func parseActor(node *yaml.Node, idx int) (Actor, []depRef, error) {
	path := fmt.Sprintf("actors[%d]", idx)
	if node.Kind != yaml.MappingNode {
		return Actor{}, nil, &TypeError{Path: path, Want: "mapping", Got: kindName(node), Line: node.Line, Column: node.Column}
	}

	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}

	var actor Actor
	if v, ok := fields["id"]; ok {
		s, err := stringValue(v, path+".id")
		if err != nil {
			return Actor{}, nil, err
		}
		actor.ID = s
	}
	if strings.TrimSpace(actor.ID) == "" {
		return Actor{}, nil, &MissingFieldError{Field: "id", Context: fmt.Sprintf("actor at index %d", idx), Line: node.Line, Column: node.Column}
	}

	if v, ok := fields["agent"]; ok {
		s, err := stringValue(v, path+".agent")
		if err != nil {
			return Actor{}, nil, err
		}
		actor.Agent = s
	}
	if strings.TrimSpace(actor.Agent) == "" {
		return Actor{}, nil, &MissingFieldError{Field: "agent", Context: fmt.Sprintf("actor %q", actor.ID), Line: node.Line, Column: node.Column}
	}

	if v, ok := fields["description"]; ok {
		s, err := stringValue(v, path+".description")
		if err != nil {
			return Actor{}, nil, err
		}
		actor.Description = s
	}

	var refs []depRef
	if v, ok := fields["dependsOn"]; ok {
		deps, depRefs, err := parseDependsOn(v, path)
		if err != nil {
			return Actor{}, nil, err
		}
		actor.DependsOn = deps
		refs = depRefs
		for i := range refs {
			refs[i].actorID = actor.ID
		}
	}

	if v, ok := fields["resourceHints"]; ok {
		hints, err := parseHints(v, actor.ID, path)
		if err != nil {
			return Actor{}, nil, err
		}
		actor.Hints = hints
	}

	return actor, refs, nil
}

// parseDependsOn extracts the dependency list for one actor, deduplicating
// while preserving declaration order.
func parseDependsOn(node *yaml.Node, path string) ([]string, []depRef, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, nil, &TypeError{Path: path + ".dependsOn", Want: "sequence", Got: kindName(node), Line: node.Line, Column: node.Column}
	}

	seen := make(map[string]bool, len(node.Content))
	deps := make([]string, 0, len(node.Content))
	refs := make([]depRef, 0, len(node.Content))

	for j, entry := range node.Content {
		if entry.Kind != yaml.ScalarNode || entry.Tag != "!!str" {
			return nil, nil, &TypeError{
				Path: fmt.Sprintf("%s.dependsOn[%d]", path, j),
				Want: "string", Got: scalarName(entry),
				Line: entry.Line, Column: entry.Column,
			}
		}
		if seen[entry.Value] {
			continue
		}
		seen[entry.Value] = true
		deps = append(deps, entry.Value)
		refs = append(refs, depRef{ref: entry.Value, line: entry.Line, column: entry.Column})
	}

	return deps, refs, nil
}

// parseHints extracts and range-checks the resourceHints block. Invalid
// numeric hints reject the whole document; they are never coerced.
func parseHints(node *yaml.Node, actorID, path string) (ResourceHints, error) {
	if node.Kind != yaml.MappingNode {
		return ResourceHints{}, &TypeError{Path: path + ".resourceHints", Want: "mapping", Got: kindName(node), Line: node.Line, Column: node.Column}
	}

	var hints ResourceHints
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "timeoutMs":
			f, err := floatValue(value, path+".resourceHints.timeoutMs")
			if err != nil {
				return ResourceHints{}, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return ResourceHints{}, &HintRangeError{ActorID: actorID, Hint: "timeoutMs", Value: value.Value, Reason: "must be finite", Line: value.Line, Column: value.Column}
			}
			if f <= 0 {
				return ResourceHints{}, &HintRangeError{ActorID: actorID, Hint: "timeoutMs", Value: value.Value, Reason: "must be positive", Line: value.Line, Column: value.Column}
			}
			hints.TimeoutMS = &f
		case "maxRetries":
			n, err := intValue(value, path+".resourceHints.maxRetries")
			if err != nil {
				return ResourceHints{}, err
			}
			if n < 0 {
				return ResourceHints{}, &HintRangeError{ActorID: actorID, Hint: "maxRetries", Value: value.Value, Reason: "must be non-negative", Line: value.Line, Column: value.Column}
			}
			hints.MaxRetries = &n
		}
	}

	return hints, nil
}

// parsePolicy extracts the optional policy block. Policy input is the one
// part of the document that degrades instead of rejecting: structural or
// type garbage here yields values the resolver replaces with goal defaults.
func parsePolicy(node *yaml.Node) *Policy {
	if node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &Policy{}
	}

	policy := &Policy{}
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "goal":
			if value.Kind == yaml.ScalarNode {
				policy.Goal = value.Value
			}
		case "weights":
			policy.Weights = parseRawWeights(value)
		}
	}
	return policy
}

// parseRawWeights reads the weight triple without validating it. Missing
// components are zero; present non-numeric components become NaN so the
// resolver can detect them.
func parseRawWeights(node *yaml.Node) RawWeights {
	var w RawWeights
	if node.Kind != yaml.MappingNode {
		return w
	}
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "cost":
			w.Cost = rawNumber(value)
		case "latency":
			w.Latency = rawNumber(value)
		case "reliability":
			w.Reliability = rawNumber(value)
		}
	}
	return w
}

// rawNumber decodes a scalar as float64, returning NaN for anything that is
// not a YAML number.
func rawNumber(node *yaml.Node) float64 {
	if node.Kind != yaml.ScalarNode || (node.Tag != "!!int" && node.Tag != "!!float") {
		return math.NaN()
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return math.NaN()
	}
	return f
}

// validateDependencyRefs checks every collected reference against the set of
// declared actor ids. Unknown references are errors, never dropped silently.
func validateDependencyRefs(actors []Actor, refs []depRef) error {
	declared := make(map[string]bool, len(actors))
	for _, a := range actors {
		declared[a.ID] = true
	}
	for _, r := range refs {
		if !declared[r.ref] {
			return &UnknownDependencyError{ActorID: r.actorID, Ref: r.ref, Line: r.line, Column: r.column}
		}
	}
	return nil
}

// stringValue extracts a scalar string, rejecting any other node type.
func stringValue(node *yaml.Node, path string) (string, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return "", &TypeError{Path: path, Want: "string", Got: scalarName(node), Line: node.Line, Column: node.Column}
	}
	return node.Value, nil
}

// floatValue extracts a YAML number as float64, rejecting non-numeric nodes.
func floatValue(node *yaml.Node, path string) (float64, error) {
	if node.Kind != yaml.ScalarNode || (node.Tag != "!!int" && node.Tag != "!!float") {
		return 0, &TypeError{Path: path, Want: "number", Got: scalarName(node), Line: node.Line, Column: node.Column}
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return 0, &TypeError{Path: path, Want: "number", Got: scalarName(node), Line: node.Line, Column: node.Column}
	}
	return f, nil
}

// intValue extracts a YAML integer, rejecting floats and non-numeric nodes.
func intValue(node *yaml.Node, path string) (int, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!int" {
		return 0, &TypeError{Path: path, Want: "integer", Got: scalarName(node), Line: node.Line, Column: node.Column}
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return 0, &TypeError{Path: path, Want: "integer", Got: scalarName(node), Line: node.Line, Column: node.Column}
	}
	return n, nil
}

// kindName returns a human-readable name for a YAML node kind.
func kindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return scalarName(node)
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// scalarName returns a human-readable type name for a scalar node based on
// its resolved tag, or the structural kind for non-scalars.
func scalarName(node *yaml.Node) string {
	if node.Kind != yaml.ScalarNode {
		return kindName(node)
	}
	switch node.Tag {
	case "!!str":
		return "string"
	case "!!int":
		return "integer"
	case "!!float":
		return "float"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	default:
		return "scalar"
	}
}
