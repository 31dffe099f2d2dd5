package api

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	ProfileService services.ProfileService
	GraphService   services.GraphService
	Templates      *template.Template
	Metrics        *metrics.Collector
	DB             Pinger
	FlashCookie    string
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

// renderStatus buffers the page so a template error can still become a 500.
func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["flash"]; !ok {
		data["flash"] = s.popFlash(w, r)
	}

	log := logger.FromContext(r.Context())
	var buf bytes.Buffer
	if err := s.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn("failed to write response: %v", err)
	}
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func redirectNotFound(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/404", http.StatusSeeOther)
}
