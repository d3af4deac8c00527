package generation

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"
)

// Generation kinds served by the API.
const (
	KindRoadmap  = "roadmap"
	KindInsights = "insights"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// PromptBuilder renders the prompt template of a generation kind.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder parses the embedded prompt templates, one per kind.
func NewPromptBuilder() (*PromptBuilder, error) {
	entries, err := promptFS.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("%w: reading prompt templates: %v", ErrInvalidConfig, err)
	}

	funcs := template.FuncMap{"join": strings.Join}
	templates := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		tmpl, err := template.New(entry.Name()).Funcs(funcs).ParseFS(promptFS, "prompts/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: parsing prompt template %s: %v", ErrInvalidConfig, entry.Name(), err)
		}
		templates[name] = tmpl
	}

	return &PromptBuilder{templates: templates}, nil
}

// Has reports whether kind has a template.
func (b *PromptBuilder) Has(kind string) bool {
	_, ok := b.templates[kind]
	return ok
}

// Build renders the prompt for kind with the caller's original parameters
// (not the normalized key form).
func (b *PromptBuilder) Build(kind string, p KeyParams) (string, error) {
	tmpl, ok := b.templates[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
