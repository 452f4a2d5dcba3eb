package changelog

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// RenderMarkdown writes the changelog as a Keep a Changelog markdown
// document. Given the same input it produces identical output, so the
// generated CHANGELOG.md stays diff-stable.
func RenderMarkdown(c *Changelog, w io.Writer) error {
	header := `# Changelog

All notable changes to ` + c.Project + ` will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).
`
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	for _, v := range c.Versions {
		if _, err := io.WriteString(w, "\n"+markdownVersionHeader(v)+"\n"); err != nil {
			return err
		}
		for _, cat := range v.Changes.Categories() {
			if _, err := io.WriteString(w, "\n### "+cat.Name+"\n"); err != nil {
				return err
			}
			for _, entry := range cat.Entries {
				if _, err := io.WriteString(w, "- "+entry+"\n"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RenderMarkdownString renders the markdown document to a string.
func RenderMarkdownString(c *Changelog) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(c, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func markdownVersionHeader(v Version) string {
	if v.IsUnreleased() {
		return "## [Unreleased]"
	}
	return fmt.Sprintf("## [%s] - %s", v.Version, v.Date)
}

// categoryColors styles category headers in terminal output.
var categoryColors = map[string]*color.Color{
	"Added":      color.New(color.FgGreen),
	"Changed":    color.New(color.FgBlue),
	"Deprecated": color.New(color.FgYellow),
	"Removed":    color.New(color.FgRed),
	"Fixed":      color.New(color.FgYellow),
	"Security":   color.New(color.FgMagenta),
}

// RenderTerminal writes one version entry with terminal styling.
func RenderTerminal(v *Version, w io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if v.IsUnreleased() {
		fmt.Fprintf(w, "%s\n", bold("Unreleased"))
	} else {
		fmt.Fprintf(w, "%s %s\n", bold("v"+v.Version), dim(v.Date))
	}

	for _, cat := range v.Changes.Categories() {
		header := cat.Name
		if c, ok := categoryColors[cat.Name]; ok {
			header = c.Sprint(cat.Name)
		}
		fmt.Fprintf(w, "\n  %s\n", header)
		for _, entry := range cat.Entries {
			fmt.Fprintf(w, "  - %s\n", entry)
		}
	}
}

// RenderTerminalAll writes every version, newest first, separated by
// blank lines.
func RenderTerminalAll(c *Changelog, w io.Writer) {
	for i := range c.Versions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		RenderTerminal(&c.Versions[i], w)
	}
}
