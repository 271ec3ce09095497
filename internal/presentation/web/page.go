package web

import (
	"embed"
	"html/template"
)

//go:embed templates/index.html
var templateFS embed.FS

func parsePage() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/index.html")
}
