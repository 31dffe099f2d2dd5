package api

import (
	"net/http"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "pages/index.html", pageData{"title": "Home"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, r, http.StatusNotFound, "pages/page_not_found.html", pageData{"title": "Page Not Found"})
}
