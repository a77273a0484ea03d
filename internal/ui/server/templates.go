package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/Its-donkey/gbpl-site/internal/ui/hubs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// loadTemplates parses the page templates. Each page is parsed together with
// the shared layout and partials, keyed by logical page name.
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"lower":   strings.ToLower,
		"percent": formatPercent,
		"add":     func(a, b int) int { return a + b },
	}

	shared := []string{"templates/base.tmpl", "templates/partials.tmpl"}
	pages := map[string]string{
		"home":    "templates/home.tmpl",
		"network": "templates/network.tmpl",
		"roadmap": "templates/roadmap.tmpl",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		patterns := append(append([]string(nil), shared...), file)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		if err := hubs.DefinePanelTemplates(tmpl); err != nil {
			return nil, fmt.Errorf("parse %s hub panel: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// formatPercent renders a CSS percentage such as "65.4%".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func (s *server) staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=300")
		files.ServeHTTP(w, r)
	})
}
