package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/picwall-dev/picwall/internal/middleware"
	"github.com/picwall-dev/picwall/internal/middleware/metrics"
	"github.com/picwall-dev/picwall/internal/setup"
)

// New configures the API routes. Everything under /v1 except auth requires
// a valid token; media readback and probes are public.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chi_middleware.Recoverer)
	r.Use(metrics.Middleware)
	// API-only CSP: no scripts or styles are ever served.
	r.Use(middleware.SecurityHeaders(false, "default-src 'none'; img-src 'self'; frame-ancestors 'none'"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authRequired := middleware.Auth(deps.Jwt)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/media/*", h.ServeMedia)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authRequired)

			r.Route("/pictures", func(r chi.Router) {
				r.Get("/", h.ListPictures)
				r.Post("/", h.UploadPicture)
				r.Get("/{id}", h.GetPicture)
				r.Delete("/{id}", h.DeletePicture)
				r.Get("/{id}/collages", h.ListPictureCollages)
			})

			r.Route("/collages", func(r chi.Router) {
				r.Get("/", h.ListCollages)
				r.Post("/", h.CreateCollage)
				r.Get("/{id}", h.GetCollage)
				r.Delete("/{id}", h.DeleteCollage)
				r.Get("/{id}/pictures", h.ListCollagePictures)
				r.Put("/{id}/pictures/{pictureId}", h.AttachPicture)
				r.Delete("/{id}/pictures/{pictureId}", h.DetachPicture)
			})
		})
	})

	return r
}
