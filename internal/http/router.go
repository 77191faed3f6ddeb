package apihttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/auth"
	"github.com/example/calcapi/internal/handlers"
	"github.com/example/calcapi/internal/metrics"
	"github.com/example/calcapi/internal/rate"
	"github.com/example/calcapi/pkg/jsonutil"
)

// RouterDeps bundles what NewRouter wires. Store, Metrics, Admin and Signup may be nil:
// a nil Store skips the health ping and leaves /api unauthenticated, nil Admin or Signup
// leaves their endpoints unmounted.
type RouterDeps struct {
	Sum     *handlers.SumHandler
	Limiter *rate.LimiterMap
	Store   auth.KeyValidator
	Metrics *metrics.Metrics
	Admin   *handlers.AdminHandler
	Signup  *handlers.SignupHandler
	Logger  zerolog.Logger
}

// NewRouter wires routes and middlewares.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(WithRequestID(d.Logger))
	r.Use(Logger(d.Metrics))
	r.Use(CORS)
	r.Use(RateLimit(d.Limiter))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Store != nil {
			if err := d.Store.Ping(r.Context()); err != nil {
				jsonutil.JSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy"})
				return
			}
		}
		jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if d.Store != nil {
			api.Use(Auth(d.Store))
		}
		api.Get("/sum/{a}/{b}", d.Sum.Pair)
		api.Post("/sum", d.Sum.Single)
		api.Post("/sum/batch", d.Sum.Batch)
	})

	if d.Admin != nil {
		r.Post("/admin/create-key", d.Admin.CreateKey)
		r.Post("/admin/revoke-key", d.Admin.RevokeKey)
	}
	if d.Signup != nil {
		r.Method(http.MethodPost, "/public/signup", d.Signup)
	}

	return r
}
