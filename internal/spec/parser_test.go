package spec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
metadata:
  id: build-pipeline
  name: Build Pipeline
  version: "1.2"
policy:
  goal: latency
  weights:
    cost: 0.2
    latency: 0.6
    reliability: 0.2
actors:
  - id: research
    agent: researcher
    description: Gather requirements
  - id: implement
    agent: coder
    dependsOn: [research]
    resourceHints:
      timeoutMs: 60000
      maxRetries: 2
  - id: review
    agent: reviewer
    dependsOn: [implement]
`

func TestParse_ValidDocument(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "build-pipeline", doc.Metadata.ID)
	assert.Equal(t, "Build Pipeline", doc.Metadata.Name)
	assert.Equal(t, "1.2", doc.Metadata.Version)

	require.Len(t, doc.Actors, 3)
	assert.Equal(t, "research", doc.Actors[0].ID)
	assert.Equal(t, "researcher", doc.Actors[0].Agent)
	assert.Empty(t, doc.Actors[0].DependsOn)
	assert.Equal(t, []string{"research"}, doc.Actors[1].DependsOn)

	require.NotNil(t, doc.Actors[1].Hints.TimeoutMS)
	assert.Equal(t, float64(60000), *doc.Actors[1].Hints.TimeoutMS)
	require.NotNil(t, doc.Actors[1].Hints.MaxRetries)
	assert.Equal(t, 2, *doc.Actors[1].Hints.MaxRetries)
	assert.Nil(t, doc.Actors[2].Hints.TimeoutMS)

	require.NotNil(t, doc.Policy)
	assert.Equal(t, "latency", doc.Policy.Goal)
	assert.InDelta(t, 0.6, doc.Policy.Weights.Latency, 1e-12)
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	first, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	second, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_MissingFields(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml        string
		wantField   string
		wantContext string
	}{
		"no metadata": {
			yaml: `
actors:
  - id: a
    agent: worker
`,
			wantField:   "metadata",
			wantContext: "root",
		},
		"metadata without id": {
			yaml: `
metadata:
  name: Unnamed
actors:
  - id: a
    agent: worker
`,
			wantField:   "id",
			wantContext: "metadata",
		},
		"metadata without name": {
			yaml: `
metadata:
  id: wf
actors:
  - id: a
    agent: worker
`,
			wantField:   "name",
			wantContext: "metadata",
		},
		"empty id string": {
			yaml: `
metadata:
  id: ""
  name: Workflow
actors:
  - id: a
    agent: worker
`,
			wantField:   "id",
			wantContext: "metadata",
		},
		"whitespace-only name": {
			yaml: `
metadata:
  id: wf
  name: "   "
actors:
  - id: a
    agent: worker
`,
			wantField:   "name",
			wantContext: "metadata",
		},
		"no actors": {
			yaml: `
metadata:
  id: wf
  name: Workflow
`,
			wantField: "actors",
		},
		"empty actors list": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors: []
`,
			wantField: "actors",
		},
		"actor without id": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - agent: worker
`,
			wantField: "id",
		},
		"actor without agent": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
`,
			wantField: "agent",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tc.yaml))
			assert.Nil(t, doc)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tc.wantField, missing.Field)
			if tc.wantContext != "" {
				assert.Equal(t, tc.wantContext, missing.Context)
			}
		})
	}
}

func TestParse_TypeErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml     string
		wantPath string
		wantWant string
	}{
		"metadata is a sequence": {
			yaml: `
metadata:
  - id: wf
actors:
  - id: a
    agent: worker
`,
			wantPath: "metadata",
			wantWant: "mapping",
		},
		"numeric metadata id": {
			yaml: `
metadata:
  id: 42
  name: Workflow
actors:
  - id: a
    agent: worker
`,
			wantPath: "metadata.id",
			wantWant: "string",
		},
		"actors is a mapping": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  a:
    agent: worker
`,
			wantPath: "actors",
			wantWant: "sequence",
		},
		"boolean actor agent": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: true
`,
			wantPath: "actors[0].agent",
			wantWant: "string",
		},
		"dependsOn is a string": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    dependsOn: a-dep
`,
			wantPath: "actors[0].dependsOn",
			wantWant: "sequence",
		},
		"numeric dependsOn entry": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
  - id: b
    agent: worker
    dependsOn: [a, 7]
`,
			wantPath: "actors[1].dependsOn[1]",
			wantWant: "string",
		},
		"string timeoutMs": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      timeoutMs: "5000"
`,
			wantPath: "actors[0].resourceHints.timeoutMs",
			wantWant: "number",
		},
		"float maxRetries": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      maxRetries: 2.5
`,
			wantPath: "actors[0].resourceHints.maxRetries",
			wantWant: "integer",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tc.yaml))
			assert.Nil(t, doc)

			var typeErr *TypeError
			require.ErrorAs(t, err, &typeErr)
			assert.Equal(t, tc.wantPath, typeErr.Path)
			assert.Equal(t, tc.wantWant, typeErr.Want)
			assert.Positive(t, typeErr.Line)
		})
	}
}

func TestParse_HintRangeErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml       string
		wantHint   string
		wantReason string
	}{
		"zero timeout": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      timeoutMs: 0
`,
			wantHint:   "timeoutMs",
			wantReason: "must be positive",
		},
		"negative timeout": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      timeoutMs: -100
`,
			wantHint:   "timeoutMs",
			wantReason: "must be positive",
		},
		"infinite timeout": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      timeoutMs: .inf
`,
			wantHint:   "timeoutMs",
			wantReason: "must be finite",
		},
		"nan timeout": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      timeoutMs: .nan
`,
			wantHint:   "timeoutMs",
			wantReason: "must be finite",
		},
		"negative retries": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    resourceHints:
      maxRetries: -1
`,
			wantHint:   "maxRetries",
			wantReason: "must be non-negative",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tc.yaml))
			assert.Nil(t, doc)

			var rangeErr *HintRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, "a", rangeErr.ActorID)
			assert.Equal(t, tc.wantHint, rangeErr.Hint)
			assert.Equal(t, tc.wantReason, rangeErr.Reason)
		})
	}
}

func TestParse_UnknownDependency(t *testing.T) {
	t.Parallel()

	yaml := `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
  - id: b
    agent: worker
    dependsOn: [a, ghost]
`

	doc, err := Parse([]byte(yaml))
	assert.Nil(t, doc)

	var unknown *UnknownDependencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "b", unknown.ActorID)
	assert.Equal(t, "ghost", unknown.Ref)
	assert.Positive(t, unknown.Line)
}

func TestParse_DuplicateActor(t *testing.T) {
	t.Parallel()

	yaml := `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
  - id: b
    agent: worker
  - id: a
    agent: other
`

	doc, err := Parse([]byte(yaml))
	assert.Nil(t, doc)

	var dup *DuplicateActorError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.ActorID)
	assert.Equal(t, 0, dup.FirstIndex)
}

func TestParse_DependsOnDeduplicated(t *testing.T) {
	t.Parallel()

	yaml := `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
  - id: b
    agent: worker
    dependsOn: [a, a, a]
`

	doc, err := Parse([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Actors[1].DependsOn)
}

func TestParse_SelfDependencyAccepted(t *testing.T) {
	t.Parallel()

	// A self-reference resolves against a declared id; rejecting it as a
	// one-node cycle is the graph builder's job.
	yaml := `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
    dependsOn: [a]
`

	doc, err := Parse([]byte(yaml))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, doc.Actors[0].DependsOn)
}

func TestParse_PolicyLeniency(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml      string
		wantNil   bool
		wantGoal  string
		checkNaNs []string // weight component names expected to be NaN
	}{
		"absent policy": {
			yaml: `
metadata:
  id: wf
  name: Workflow
actors:
  - id: a
    agent: worker
`,
			wantNil: true,
		},
		"null policy": {
			yaml: `
metadata:
  id: wf
  name: Workflow
policy:
actors:
  - id: a
    agent: worker
`,
			wantNil: true,
		},
		"policy is a scalar": {
			yaml: `
metadata:
  id: wf
  name: Workflow
policy: 5
actors:
  - id: a
    agent: worker
`,
			wantGoal: "",
		},
		"non-numeric weight becomes NaN": {
			yaml: `
metadata:
  id: wf
  name: Workflow
policy:
  goal: cost
  weights:
    cost: cheap
    latency: 1
actors:
  - id: a
    agent: worker
`,
			wantGoal:  "cost",
			checkNaNs: []string{"cost"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)

			if tc.wantNil {
				assert.Nil(t, doc.Policy)
				return
			}
			require.NotNil(t, doc.Policy)
			assert.Equal(t, tc.wantGoal, doc.Policy.Goal)
			for _, component := range tc.checkNaNs {
				switch component {
				case "cost":
					assert.True(t, math.IsNaN(doc.Policy.Weights.Cost))
				case "latency":
					assert.True(t, math.IsNaN(doc.Policy.Weights.Latency))
				case "reliability":
					assert.True(t, math.IsNaN(doc.Policy.Weights.Reliability))
				}
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"malformed yaml":  "metadata: [unclosed",
		"empty input":     "",
		"whitespace only": "   \n  ",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(input))
			assert.Nil(t, doc)
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		doc, err := ParseFile("/nonexistent/workflow.yaml")
		assert.Nil(t, doc)
		assert.ErrorContains(t, err, "reading spec file")
	})
}
