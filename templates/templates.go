package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed html/*.html
var files embed.FS

// Load parses the embedded page templates with the FuncMap bound to loc
func Load(loc *time.Location) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(GetTemplateFuncs(loc)).ParseFS(files, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
