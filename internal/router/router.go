package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"design-pro/internal/config"
	"design-pro/internal/handlers"
	"design-pro/internal/middleware"
	"design-pro/internal/models"
	"design-pro/internal/repository"
	"design-pro/internal/service"
	"design-pro/internal/storage"
)

// authRateLimit caps login and registration attempts per IP and minute.
const authRateLimit = 20

// Deps are the backends the API runs on.
type Deps struct {
	Users      repository.UserRepository
	Categories repository.CategoryRepository
	Requests   repository.RequestRepository
	Store      storage.Store
	DB         handlers.Pinger // optional, checked by /healthz
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Metrics(reg))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	r.Use(middleware.WithAuth(log, cfg))

	// Health + metrics
	r.Get("/healthz", handlers.Health(d.DB))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Services + handlers
	authSvc := service.NewAuthService(d.Users, cfg.SessionSecret, cfg.SessionTTL, log)
	reqSvc := service.NewRequestService(d.Requests, d.Categories, d.Store, log).WithMetrics(reg)
	catSvc := service.NewCategoryService(d.Categories, d.Store, log)

	ah := handlers.NewAuthHTTP(authSvc, log, cfg.SessionTTL, cfg.Env != "dev")
	rh := handlers.NewRequestHTTP(reqSvc, log)
	adm := handlers.NewAdminHTTP(reqSvc, log)
	ch := handlers.NewCategoryHTTP(catSvc, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", rh.Home())
		r.Get("/categories", ch.List())

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(authRateLimit, time.Minute))
				r.Post("/register", ah.Register())
				r.Post("/login", ah.Login())
			})
			r.Post("/logout", ah.Logout())
			r.With(middleware.RequireAuth).Get("/me", ah.Me())
		})

		r.Route("/requests", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", rh.ListMine())
			r.Post("/", rh.Create())
			r.Delete("/{id}", rh.Delete())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireRoles(models.RoleAdmin))
			r.Get("/summary", adm.Summary())
			r.Get("/requests", adm.List())
			r.Post("/requests/{id}/status", adm.ChangeStatus())
			r.Post("/categories", ch.Create())
			r.Delete("/categories/{id}", ch.Delete())
		})
	})

	return r
}
