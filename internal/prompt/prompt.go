// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt builds the text request sent to the generation model
// for one chunk of a legacy source listing.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// envelopeTmpl wraps the caller-supplied template, the chunk, and the
// optional reference context into the final request. The wording mirrors
// the instruction block the analysis prompt has always carried: return
// structured output only, no commentary.
var envelopeTmpl = template.Must(template.New("envelope").Parse(`{{.Template}}
You are analyzing legacy source code from program {{.ModuleCode}}.
Only extract meaningful business logic use cases.

Return ONLY structured output. Follow the format. No commentary.
{{if .Context}}
Reference context (not primary logic):
{{.Context}}
{{end}}
[SOURCE CODE]
{{.Chunk}}
[END CODE]
`))

// Metadata carries the per-document fields interpolated into a prompt.
type Metadata struct {
	// ModuleCode is the legacy program code, e.g. "AP160".
	ModuleCode string
}

// LoadTemplate reads the prompt template file. A missing or unreadable
// template is a preflight error; the pipeline aborts before chunking.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading prompt template %s: %w", path, err)
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("prompt template %s is empty", path)
	}
	return text, nil
}

// Build assembles the request text for one chunk. It is a pure function:
// the same (template, chunk, context, metadata) tuple always yields
// byte-identical output, and no argument is mutated.
func Build(tmpl, chunkText, contextText string, meta Metadata) string {
	var buf bytes.Buffer
	err := envelopeTmpl.Execute(&buf, struct {
		Template   string
		ModuleCode string
		Context    string
		Chunk      string
	}{
		Template:   tmpl,
		ModuleCode: meta.ModuleCode,
		Context:    strings.TrimSpace(contextText),
		Chunk:      chunkText,
	})
	if err != nil {
		// The envelope template is static and the data struct has no
		// methods, so execution cannot fail at runtime.
		panic(fmt.Sprintf("prompt envelope: %v", err))
	}
	return buf.String()
}
