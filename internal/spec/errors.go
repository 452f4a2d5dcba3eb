package spec

import "fmt"

// ParseError represents a structural error in the raw document: invalid YAML
// or a node of the wrong shape where the schema demands otherwise.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// MissingFieldError represents a required field that is absent or empty.
type MissingFieldError struct {
	// Field is the name of the missing field.
	Field string
	// Context describes where the field is expected.
	Context string
	// Line is the source line number where the error applies.
	Line int
	// Column is the source column number where the error applies.
	Column int
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: missing required field %q in %s", e.Line, e.Field, e.Context)
	}
	return fmt.Sprintf("missing required field %q in %s", e.Field, e.Context)
}

// TypeError represents a field whose YAML node has the wrong type.
type TypeError struct {
	// Path locates the offending field (e.g. "actors[2].dependsOn").
	Path string
	// Want is the expected type name.
	Want string
	// Got is the actual type name found in the document.
	Got string
	// Line is the source line number of the offending node.
	Line int
	// Column is the source column number of the offending node.
	Column int
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("line %d: %s: expected %s, got %s", e.Line, e.Path, e.Want, e.Got)
}

// DuplicateActorError represents two actors declared with the same id.
type DuplicateActorError struct {
	// ActorID is the duplicated actor id.
	ActorID string
	// FirstIndex is the declaration index of the first occurrence.
	FirstIndex int
	// Line is the source line number of the duplicate declaration.
	Line int
	// Column is the source column number of the duplicate declaration.
	Column int
}

// Error implements the error interface.
func (e *DuplicateActorError) Error() string {
	return fmt.Sprintf("line %d: duplicate actor id %q (first declared at index %d)",
		e.Line, e.ActorID, e.FirstIndex)
}

// UnknownDependencyError represents a dependency reference to an actor id
// that is not declared anywhere in the document.
type UnknownDependencyError struct {
	// ActorID is the actor containing the dangling reference.
	ActorID string
	// Ref is the referenced id that does not exist.
	Ref string
	// Line is the source line number where the reference appears.
	Line int
	// Column is the source column number where the reference appears.
	Column int
}

// Error implements the error interface.
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("line %d: actor %q depends on undeclared actor %q", e.Line, e.ActorID, e.Ref)
}

// HintRangeError represents a resource hint with a numeric value outside its
// valid range.
type HintRangeError struct {
	// ActorID is the actor carrying the invalid hint.
	ActorID string
	// Hint is the hint field name (e.g. "timeoutMs").
	Hint string
	// Value is the rejected value as written.
	Value string
	// Reason describes the violated constraint.
	Reason string
	// Line is the source line number of the hint value.
	Line int
	// Column is the source column number of the hint value.
	Column int
}

// Error implements the error interface.
func (e *HintRangeError) Error() string {
	return fmt.Sprintf("line %d: actor %q: %s=%s: %s", e.Line, e.ActorID, e.Hint, e.Value, e.Reason)
}
