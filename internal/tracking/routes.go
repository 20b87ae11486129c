package tracking

import (
	"net/http"

	"github.com/CampusTrack/CT-Backend/internal/auth"
	"github.com/CampusTrack/CT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Devices re-send at most every few seconds by design; 2/s with a
	// small burst absorbs clock jitter without letting a device flood.
	writeLimiter := middleware.NewWriteLimiter(2, 5)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.With(writeLimiter.Middleware).Post("/location", LocationHandler)
		r.Post("/status", StatusHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin))
		r.Get("/locations", LocationsHandler)
	})

	return r
}
