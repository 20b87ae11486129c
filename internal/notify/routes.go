package notify

import (
	"net/http"

	"github.com/CampusTrack/CT-Backend/internal/auth"
	"github.com/CampusTrack/CT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/", ListHandler)
		r.Put("/{id}/read", ReadHandler)
		r.Post("/subscribe", SubscribeHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin))
		r.Post("/", BroadcastHandler)
	})

	return r
}
