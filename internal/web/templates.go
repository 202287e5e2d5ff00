package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Presentation renders the page, the list container and single rows from
// the embedded templates.
type Presentation struct {
	tmpl *template.Template
}

func NewPresentation() (*Presentation, error) {
	tmpl, err := template.New("todo").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Presentation{tmpl: tmpl}, nil
}
