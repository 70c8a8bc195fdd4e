// Package composer renders the fixed instruction pair sent to the extraction
// model. The output schema communicated here is a contract with the model,
// not something the composer validates — enforcement happens downstream at
// the parse boundary.
package composer

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/system.txt
var systemPrompt string

//go:embed prompts/user.txt
var userPromptTemplate string

var userTmpl = template.Must(template.New("user").Parse(userPromptTemplate))

// Request is the immutable instruction pair for one extraction call.
type Request struct {
	System string
	User   string
}

// Render embeds one trimmed transcript in the fixed user template and pairs
// it with the fixed system instruction. Rendering is deterministic: the same
// transcript always produces the same Request.
func Render(transcript string) (Request, error) {
	var sb strings.Builder
	if err := userTmpl.Execute(&sb, struct{ Transcript string }{Transcript: transcript}); err != nil {
		return Request{}, fmt.Errorf("rendering user prompt: %w", err)
	}
	return Request{
		System: strings.TrimSpace(systemPrompt),
		User:   sb.String(),
	}, nil
}
