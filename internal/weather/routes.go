package weather

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
		r.Use(middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin))
		r.Get("/alerts", AlertsHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Post("/auto/enable", EnableHandler)
		r.Post("/auto/disable", DisableHandler)
		r.Get("/auto/status", StatusHandler)
		r.Get("/proposal", ProposalHandler)
		r.Post("/proposal/confirm", ConfirmHandler)
		r.Post("/proposal/dismiss", DismissHandler)
	})

	return r
}
