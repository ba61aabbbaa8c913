package request

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultDocument is the wire document rendered for a request when the
// archive configuration supplies no template of its own. Map iteration in
// templates is key-sorted, so the output is deterministic.
const DefaultDocument = `retrieve,
{{- range $key, $value := .request }}
  {{ $key }}={{ $value }},
{{- end }}
`

// Engine renders request wire documents with Sprig template functions
// available to configuration-supplied templates.
type Engine struct {
	funcMap template.FuncMap
}

// NewEngine creates a new render engine.
func NewEngine() *Engine {
	return &Engine{funcMap: sprig.TxtFuncMap()}
}

// Render renders a wire document template against a resolved request. The
// request is exposed to the template as .request.
func (e *Engine) Render(content string, req Request) (string, error) {
	tmpl, err := template.New("request").Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse request template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"request": map[string]string(req)}); err != nil {
		return "", fmt.Errorf("failed to execute request template: %w", err)
	}

	return buf.String(), nil
}
