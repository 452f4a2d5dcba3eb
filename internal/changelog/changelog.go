// Package changelog provides the embedded atx release history.
//
// The changelog.yaml file in this package is the single source of truth
// for release notes. It is embedded at build time so the CLI can show
// release history without network or filesystem access, and it renders
// to Keep a Changelog markdown for the repository CHANGELOG.
package changelog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed changelog.yaml
var embedded []byte

// Changelog is the root of a changelog.yaml document. Versions are ordered
// newest first.
type Changelog struct {
	Project  string    `yaml:"project"`
	Versions []Version `yaml:"versions"`
}

// Version is one release entry. Version holds a bare semantic version
// ("0.2.0") or the special identifier "unreleased". Date uses YYYY-MM-DD
// and is required for released versions.
type Version struct {
	Version string  `yaml:"version"`
	Date    string  `yaml:"date,omitempty"`
	Changes Changes `yaml:"changes"`
}

// Changes groups entries by Keep a Changelog category. Empty categories
// are omitted when rendering.
type Changes struct {
	Added      []string `yaml:"added,omitempty"`
	Changed    []string `yaml:"changed,omitempty"`
	Deprecated []string `yaml:"deprecated,omitempty"`
	Removed    []string `yaml:"removed,omitempty"`
	Fixed      []string `yaml:"fixed,omitempty"`
	Security   []string `yaml:"security,omitempty"`
}

// Categories returns the non-empty categories in standard rendering order.
func (c Changes) Categories() []Category {
	all := []Category{
		{Name: "Added", Entries: c.Added},
		{Name: "Changed", Entries: c.Changed},
		{Name: "Deprecated", Entries: c.Deprecated},
		{Name: "Removed", Entries: c.Removed},
		{Name: "Fixed", Entries: c.Fixed},
		{Name: "Security", Entries: c.Security},
	}
	var out []Category
	for _, cat := range all {
		if len(cat.Entries) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Count returns the total number of entries across all categories.
func (c Changes) Count() int {
	return len(c.Added) + len(c.Changed) + len(c.Deprecated) +
		len(c.Removed) + len(c.Fixed) + len(c.Security)
}

// Category pairs a category name with its entries.
type Category struct {
	Name    string
	Entries []string
}

// IsUnreleased reports whether this entry collects unreleased changes.
func (v Version) IsUnreleased() bool {
	return v.Version == "unreleased"
}

// ValidationError reports a schema violation in a changelog document.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// VersionNotFoundError is returned when a requested version does not exist.
type VersionNotFoundError struct {
	Version   string
	Available []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.Available, ", "))
}

// LoadEmbedded parses and validates the changelog embedded at build time.
func LoadEmbedded() (*Changelog, error) {
	if len(embedded) == 0 {
		return nil, fmt.Errorf("embedded changelog is empty")
	}
	return LoadFromReader(bytes.NewReader(embedded))
}

// Load reads and validates a changelog.yaml file.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads and validates a changelog document.
func LoadFromReader(r io.Reader) (*Changelog, error) {
	var c Changelog
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing changelog YAML: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks the changelog schema: a project name, unique semantic
// versions, and dates on released versions. Uniqueness also guarantees at
// most one unreleased entry.
func Validate(c *Changelog) error {
	if c.Project == "" {
		return &ValidationError{Field: "project", Message: "required field is empty"}
	}

	seen := make(map[string]bool)
	for i, v := range c.Versions {
		field := fmt.Sprintf("versions[%d]", i)
		if v.Version == "" {
			return &ValidationError{Field: field + ".version", Message: "required field is empty"}
		}

		normalized := NormalizeVersion(v.Version)
		if seen[normalized] {
			return &ValidationError{
				Field:   field + ".version",
				Message: fmt.Sprintf("duplicate version %q", v.Version),
			}
		}
		seen[normalized] = true

		if v.IsUnreleased() {
			if v.Date != "" {
				return &ValidationError{Field: field + ".date", Message: "unreleased entries have no date"}
			}
			continue
		}

		if !semverRe.MatchString(normalized) {
			return &ValidationError{
				Field:   field + ".version",
				Message: fmt.Sprintf("%q is not a semantic version", v.Version),
			}
		}
		if v.Date == "" {
			return &ValidationError{Field: field + ".date", Message: "released versions require a date"}
		}
		if !dateRe.MatchString(v.Date) {
			return &ValidationError{
				Field:   field + ".date",
				Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", v.Date),
			}
		}
	}
	return nil
}

// NormalizeVersion strips an optional leading "v" so lookups accept both
// "v0.2.0" and "0.2.0".
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(version, "v")
}

// GetVersion retrieves a version entry by identifier.
func (c *Changelog) GetVersion(version string) (*Version, error) {
	normalized := NormalizeVersion(version)
	for i := range c.Versions {
		if NormalizeVersion(c.Versions[i].Version) == normalized {
			return &c.Versions[i], nil
		}
	}
	return nil, &VersionNotFoundError{Version: version, Available: c.ListVersions()}
}

// GetUnreleased returns the unreleased entry, or nil when there is none.
func (c *Changelog) GetUnreleased() *Version {
	for i := range c.Versions {
		if c.Versions[i].IsUnreleased() {
			return &c.Versions[i]
		}
	}
	return nil
}

// GetLatestRelease returns the newest released version, or nil when the
// changelog holds only unreleased changes.
func (c *Changelog) GetLatestRelease() *Version {
	for i := range c.Versions {
		if !c.Versions[i].IsUnreleased() {
			return &c.Versions[i]
		}
	}
	return nil
}

// ListVersions returns all version identifiers, newest first.
func (c *Changelog) ListVersions() []string {
	versions := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		versions[i] = v.Version
	}
	return versions
}
