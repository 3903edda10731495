package orchestrator

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed templates/extract_user.tmpl
var extractUserTmpl string

// extractTmpl renders the structured-extraction user message.
var extractTmpl = template.Must(template.New("extract_user").Parse(extractUserTmpl))

// extractPromptData carries the note draft and target schema into the template.
type extractPromptData struct {
	Draft  string
	Schema string
}

// BuildExtractPrompt renders the draft and schema into the single user
// message submitted by the structured-extraction workflow.
func BuildExtractPrompt(draft, schema string) (string, error) {
	var buf bytes.Buffer
	if err := extractTmpl.Execute(&buf, extractPromptData{Draft: draft, Schema: schema}); err != nil {
		return "", fmt.Errorf("render extract prompt: %w", err)
	}
	return buf.String(), nil
}
