// Package pages holds the server-rendered HTML views
package pages

import (
	"embed"
	"html/template"

	"github.com/yigit/internhub/internal/pkg/helpers"
)

//go:embed templates/*.html
var files embed.FS

// Load parses every page template. Templates are addressed by file name.
func Load() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"date": helpers.FormatDate,
	}).ParseFS(files, "templates/*.html")
}
