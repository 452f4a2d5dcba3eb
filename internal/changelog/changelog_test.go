package changelog

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `project: atx
versions:
  - version: unreleased
    changes:
      added:
        - "pending thing"
  - version: 0.2.0
    date: 2026-04-22
    changes:
      added:
        - "retry with backoff"
      fixed:
        - "exit code on interrupt"
  - version: 0.1.0
    date: 2026-02-10
    changes:
      added:
        - "initial release"
`

func load(t *testing.T, yaml string) *Changelog {
	t.Helper()
	c, err := LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	return c
}

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	c, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, "atx", c.Project)
	assert.NotEmpty(t, c.Versions)
	require.NotNil(t, c.GetLatestRelease())
	assert.Equal(t, "0.3.0", c.GetLatestRelease().Version)
}

func TestLoadFromReader_Validation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml    string
		wantErr string
	}{
		"valid document": {
			yaml: validYAML,
		},
		"missing project": {
			yaml:    "versions: []\n",
			wantErr: "project",
		},
		"missing version id": {
			yaml:    "project: atx\nversions:\n  - date: 2026-01-01\n",
			wantErr: "required field is empty",
		},
		"duplicate version": {
			yaml: `project: atx
versions:
  - version: 0.1.0
    date: 2026-02-10
  - version: v0.1.0
    date: 2026-02-11
`,
			wantErr: "duplicate version",
		},
		"not a semantic version": {
			yaml:    "project: atx\nversions:\n  - version: banana\n    date: 2026-01-01\n",
			wantErr: "not a semantic version",
		},
		"released without date": {
			yaml:    "project: atx\nversions:\n  - version: 0.1.0\n",
			wantErr: "require a date",
		},
		"malformed date": {
			yaml:    "project: atx\nversions:\n  - version: 0.1.0\n    date: Feb 10\n",
			wantErr: "not a YYYY-MM-DD date",
		},
		"unreleased with date": {
			yaml:    "project: atx\nversions:\n  - version: unreleased\n    date: 2026-01-01\n",
			wantErr: "no date",
		},
		"capitalized unreleased rejected": {
			yaml: `project: atx
versions:
  - version: unreleased
  - version: Unreleased
`,
			// Only the lowercase spelling is the unreleased marker, so
			// this falls through to semver validation.
			wantErr: "not a semantic version",
		},
		"repeated unreleased rejected": {
			yaml: `project: atx
versions:
  - version: unreleased
  - version: unreleased
`,
			wantErr: "duplicate version",
		},
		"malformed yaml": {
			yaml:    "project: [unclosed\n",
			wantErr: "parsing changelog YAML",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFromReader(strings.NewReader(tt.yaml))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	c := load(t, validYAML)

	t.Run("bare version", func(t *testing.T) {
		t.Parallel()
		v, err := c.GetVersion("0.2.0")
		require.NoError(t, err)
		assert.Equal(t, "2026-04-22", v.Date)
	})

	t.Run("v prefix normalized", func(t *testing.T) {
		t.Parallel()
		v, err := c.GetVersion("v0.1.0")
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", v.Version)
	})

	t.Run("unknown version", func(t *testing.T) {
		t.Parallel()
		_, err := c.GetVersion("9.9.9")
		require.Error(t, err)

		var notFound *VersionNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "9.9.9", notFound.Version)
		assert.Contains(t, notFound.Available, "0.1.0")
	})
}

func TestUnreleasedAndLatest(t *testing.T) {
	t.Parallel()

	c := load(t, validYAML)

	unreleased := c.GetUnreleased()
	require.NotNil(t, unreleased)
	assert.True(t, unreleased.IsUnreleased())

	latest := c.GetLatestRelease()
	require.NotNil(t, latest)
	assert.Equal(t, "0.2.0", latest.Version)

	assert.Equal(t, []string{"unreleased", "0.2.0", "0.1.0"}, c.ListVersions())
}

func TestChangesCategories(t *testing.T) {
	t.Parallel()

	changes := Changes{
		Added:   []string{"a"},
		Fixed:   []string{"f1", "f2"},
		Removed: []string{"r"},
	}

	cats := changes.Categories()
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = cat.Name
	}

	// Standard Keep a Changelog order, empty categories skipped.
	assert.Equal(t, []string{"Added", "Removed", "Fixed"}, names)
	assert.Equal(t, 4, changes.Count())
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	c := load(t, validYAML)

	out, err := RenderMarkdownString(c)
	require.NoError(t, err)

	assert.Contains(t, out, "# Changelog")
	assert.Contains(t, out, "All notable changes to atx")
	assert.Contains(t, out, "## [Unreleased]")
	assert.Contains(t, out, "## [0.2.0] - 2026-04-22")
	assert.Contains(t, out, "### Added")
	assert.Contains(t, out, "- retry with backoff")
	assert.Contains(t, out, "### Fixed")

	// Idempotent: the same input renders byte-identical output.
	again, err := RenderMarkdownString(c)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRenderTerminal(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	c := load(t, validYAML)

	var b strings.Builder
	RenderTerminal(c.GetLatestRelease(), &b)

	out := b.String()
	assert.Contains(t, out, "v0.2.0")
	assert.Contains(t, out, "2026-04-22")
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "- retry with backoff")
}

func TestRenderTerminalAll(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	c := load(t, validYAML)

	var b strings.Builder
	RenderTerminalAll(c, &b)

	out := b.String()
	assert.Contains(t, out, "Unreleased")
	assert.Contains(t, out, "v0.2.0")
	assert.Contains(t, out, "v0.1.0")
}

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.1.0", NormalizeVersion("v0.1.0"))
	assert.Equal(t, "0.1.0", NormalizeVersion("0.1.0"))
	assert.Equal(t, "unreleased", NormalizeVersion("unreleased"))
}
