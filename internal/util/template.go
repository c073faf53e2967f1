package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderPrompt expands template variables in a system prompt using Go's
// text/template package, so operators can reference {{.BotName}} or
// {{.Model}} in configured prompts. This lives in internal to avoid
// committing to public API stability prematurely.
func RenderPrompt(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
