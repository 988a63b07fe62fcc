// Package views holds the server-rendered pages.
package views

import (
	"embed"
	"html/template"

	"pqrssi-portal/utils"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are available to every page.
var Funcs = template.FuncMap{
	"formatDate": utils.FormatDate,
}

// Load parses every page together with the shared layout blocks.
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}
