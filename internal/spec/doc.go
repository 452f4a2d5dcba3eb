// Package spec parses declarative workflow documents into a validated,
// immutable in-memory model.
//
// A workflow document declares metadata, an ordered list of actor tasks with
// dependency references, and an optional optimization policy. Parse performs
// strict boundary validation: every field is checked against the YAML node it
// came from, dependency references are resolved against declared actor ids,
// and numeric resource hints are range-checked. A document validates wholly
// or not at all; no partial model is ever returned.
package spec
