// Package prompt loads the YAML prompt templates that drive curation.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template types. The type selects which fields the model must return and
// which vocabulary validates them.
const (
	TypeCategorize = "categorize"
	TypeLabel      = "label"
	TypeCurate     = "curate"
)

// Params holds the sampling knobs passed through to the engine.
type Params struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Template is a prompt definition: persona and instructions for the model,
// the expected output format, and the allowed vocabularies. Immutable once
// loaded.
type Template struct {
	Type         string   `yaml:"type"`
	Objective    string   `yaml:"objective"`
	Persona      string   `yaml:"persona"`
	Instructions string   `yaml:"instructions"`
	OutputFormat string   `yaml:"output_format"`
	Example      string   `yaml:"example"`
	Categories   []string `yaml:"categories"`
	Subjects     []string `yaml:"subjects"`
	Tags         []string `yaml:"tags"`
	Params       Params   `yaml:"params"`

	categories map[string]struct{}
	subjects   map[string]struct{}
	tags       map[string]struct{}
}

// Load reads a template document, substitutes the vocabulary placeholders
// (%CATEGORIES%, %SUBJECTS%, %TAGS%) into the instructions, and validates
// the required fields for the declared type.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(data)
}

// Parse builds a template from raw YAML.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	t.Instructions = t.substitute(t.Instructions)
	t.OutputFormat = t.substitute(t.OutputFormat)

	t.categories = index(t.Categories)
	t.subjects = index(t.Subjects)
	t.tags = index(t.Tags)

	return &t, nil
}

func (t *Template) validate() error {
	switch t.Type {
	case TypeCategorize:
		if len(t.Categories) == 0 {
			return fmt.Errorf("template: categorize requires a categories vocabulary")
		}
	case TypeLabel:
		if len(t.Subjects) == 0 {
			return fmt.Errorf("template: label requires a subjects vocabulary")
		}
	case TypeCurate:
		if len(t.Tags) == 0 {
			return fmt.Errorf("template: curate requires a tags vocabulary")
		}
	default:
		return fmt.Errorf("template: unsupported type: %q", t.Type)
	}

	for _, field := range []struct{ name, value string }{
		{"objective", t.Objective},
		{"persona", t.Persona},
		{"instructions", t.Instructions},
		{"output_format", t.OutputFormat},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("template: missing required field: %s", field.name)
		}
	}

	return nil
}

func (t *Template) substitute(text string) string {
	text = strings.ReplaceAll(text, "%CATEGORIES%", strings.Join(t.Categories, ", "))
	text = strings.ReplaceAll(text, "%SUBJECTS%", strings.Join(t.Subjects, ", "))
	text = strings.ReplaceAll(text, "%TAGS%", strings.Join(t.Tags, ", "))
	return text
}

// Render assembles the full prompt for one input. Each component is wrapped
// in a named tag block so the model can tell instructions from content.
func (t *Template) Render(input string) string {
	sections := []struct{ name, text string }{
		{"objective", t.Objective},
		{"persona", t.Persona},
		{"instructions", t.Instructions},
		{"output_format", t.OutputFormat},
		{"example", t.Example},
		{"input", input},
	}

	var parts []string
	for _, s := range sections {
		if strings.TrimSpace(s.text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("<%s>\n%s\n</%s>", s.name, s.text, s.name))
	}
	return strings.Join(parts, "\n")
}

// ValidCategory reports whether v belongs to the template's categories.
func (t *Template) ValidCategory(v string) bool {
	_, ok := t.categories[v]
	return ok
}

// ValidSubject reports whether v belongs to the template's subjects.
func (t *Template) ValidSubject(v string) bool {
	_, ok := t.subjects[v]
	return ok
}

// ValidTag reports whether v belongs to the template's tags.
func (t *Template) ValidTag(v string) bool {
	_, ok := t.tags[v]
	return ok
}

func index(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
