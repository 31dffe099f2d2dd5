package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(s.metricsMiddleware)

	r.Get("/", s.handleHome)
	r.Get("/monkeys", s.handleMonkeys)
	r.Post("/monkeys", s.handleCreateMonkey)
	r.Get("/monkey/{id}", s.handleMonkey)
	r.Post("/monkey/{id}", s.handleAddFriend)
	r.Get("/monkey/{id}/add_best_friend/", s.handleBestFriendRedirect)
	r.Post("/monkey/{id}/add_best_friend/", s.handleSetBestFriend)
	r.Get("/remove_friend/{id1}/{id2}", s.handleRemoveFriendConfirm)
	r.Post("/remove_friend/{id1}/{id2}", s.handleRemoveFriend)
	r.Get("/edit/{id}", s.handleEditMonkey)
	r.Post("/edit/{id}", s.handleUpdateMonkey)
	r.Get("/remove/{id}", s.handleRemoveMonkeyConfirm)
	r.Post("/remove/{id}", s.handleRemoveMonkey)

	r.Get("/404", s.handleNotFound)
	r.NotFound(s.handleNotFound)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}
