package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hemanthk92/regdesk/internal/auth"
	"github.com/hemanthk92/regdesk/internal/middleware"
)

// SetupRoutes builds the full router with the standard middleware chain.
func SetupRoutes(h *Handler, jwtManager *auth.JWTManager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/checkpoint", h.Checkpoint)
				r.Get("/grid", h.Grid)

				r.Route("/slots/{slot}", func(r chi.Router) {
					r.Get("/", h.GetSlot)
					r.Patch("/", h.UpdateSlot)
					r.Put("/size", h.ResizeSlot)
					r.Get("/events", h.SlotEvents)
				})

				r.Get("/submission", h.SubmissionPlan)
				r.Post("/submission", h.Submit)

				r.Route("/payment", func(r chi.Router) {
					r.Post("/order", h.CreateOrder)
					r.Post("/verify", h.VerifyPayment)
				})
			})
		})

		r.Route("/school", func(r chi.Router) {
			r.Post("/check-email", h.CheckEmail)
			r.Post("/validate", h.ValidateRegistration)
		})

		r.Route("/qualifier/{teamId}", func(r chi.Router) {
			r.Get("/", h.QualifierCheck)
			r.Get("/team", h.QualifierTeam)
			r.Post("/members", h.QualifierSaveMembers)
			r.Post("/order", h.QualifierOrder)
			r.Post("/verify", h.QualifierVerify)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(jwtManager))
				r.Get("/schools", h.AdminSchools)
				r.Get("/schools/stats", h.AdminSchoolStats)
				r.Get("/teams", h.AdminTeams)
				r.Get("/teams/stats", h.AdminTeamStats)
				r.Patch("/teams/{teamRegId}/qualify", h.AdminQualifyTeam)
			})
		})
	})

	return r
}
