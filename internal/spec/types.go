package spec

// Document is the root of a parsed workflow specification.
// It is created once by Parse and must be treated as immutable thereafter.
type Document struct {
	// Metadata identifies the workflow.
	Metadata Metadata
	// Actors is the ordered list of declared actor tasks (never empty).
	Actors []Actor
	// Policy is the optional optimization policy. Nil when the document
	// declares none; weight validation and defaulting happen downstream.
	Policy *Policy
}

// Metadata identifies a workflow document.
type Metadata struct {
	// ID is the unique workflow identifier (required, non-empty).
	ID string
	// Name is the human-readable workflow name (required, non-empty).
	Name string
	// Version is an optional free-form version label.
	Version string
}

// Actor is a single declared unit of work within a workflow.
type Actor struct {
	// ID uniquely identifies the actor within the document.
	ID string
	// Agent names the executor that performs this actor's work.
	Agent string
	// Description is an optional human-readable summary, used as the task
	// title in session records.
	Description string
	// DependsOn lists actor ids that must complete before this actor runs.
	// Entries are deduplicated and preserve declaration order; every entry
	// references a declared actor.
	DependsOn []string
	// Hints carries optional per-actor resource hints.
	Hints ResourceHints
}

// ResourceHints carries optional numeric execution hints for an actor.
// Nil pointers mean the hint is absent and a configured default applies.
type ResourceHints struct {
	// TimeoutMS is the per-attempt execution deadline in milliseconds.
	// When present it is positive and finite.
	TimeoutMS *float64
	// MaxRetries is the number of retries after a failed attempt.
	// When present it is a non-negative integer.
	MaxRetries *int
}

// Policy captures the raw optimization policy as authored. Weight values are
// passed through unvalidated; the policy resolver normalizes them and falls
// back to goal defaults on invalid input, so raw values never reach the
// scheduler.
type Policy struct {
	// Goal is the declared optimization goal (e.g. "cost", "latency",
	// "reliability", "balanced"). Unknown goals resolve to balanced defaults.
	Goal string
	// Weights holds the raw weight triple. Missing components are zero;
	// components present with a non-numeric value are NaN so the resolver
	// can detect and reject them.
	Weights RawWeights
}

// RawWeights is the unvalidated cost/latency/reliability triple as authored.
type RawWeights struct {
	Cost        float64
	Latency     float64
	Reliability float64
}
