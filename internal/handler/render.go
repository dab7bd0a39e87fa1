package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

// Renderer executes per-page template sets over the shared layout. Handlers
// share one instance so base data (BaseURL, Year) stays consistent.
type Renderer struct {
	templates map[string]*template.Template
	baseURL   string
	logger    *slog.Logger
}

func NewRenderer(templates map[string]*template.Template, baseURL string, logger *slog.Logger) *Renderer {
	return &Renderer{
		templates: templates,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// BaseURL returns the site base URL for handlers building absolute links.
func (rd *Renderer) BaseURL() string { return rd.baseURL }

func (rd *Renderer) Render(w http.ResponseWriter, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["BaseURL"] = rd.baseURL
	data["Year"] = time.Now().Year()
	if _, exists := data["ActiveNav"]; !exists {
		data["ActiveNav"] = ""
	}

	tmpl, ok := rd.templates[name]
	if !ok {
		rd.logger.Error("template not found", "name", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		rd.logger.Error("template render", "name", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
