package apihttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/auth"
	"github.com/example/calcapi/internal/metrics"
	"github.com/example/calcapi/internal/rate"
	"github.com/example/calcapi/pkg/jsonutil"
)

type ctxKey string

const ctxKeyRequestInfo ctxKey = "req_info"

// requestInfo is filled in by inner middlewares and read back by Logger.
type requestInfo struct {
	id     string
	apiKey string // hash prefix only
}

func infoFrom(ctx context.Context) *requestInfo {
	ri, _ := ctx.Value(ctxKeyRequestInfo).(*requestInfo)
	return ri
}

// WithRequestID assigns a request id, echoes it in X-Request-ID and attaches a request
// scoped logger derived from base to the context.
func WithRequestID(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ri := &requestInfo{id: uuid.NewString()}
			ctx := context.WithValue(r.Context(), ctxKeyRequestInfo, ri)
			ctx = base.With().Str("req_id", ri.id).Logger().WithContext(ctx)
			w.Header().Set("X-Request-ID", ri.id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Logger logs one structured line per request and records request metrics.
func Logger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			route := routePattern(r)
			m.ObserveRequest(r.Method, route, rec.status, dur)

			ev := zerolog.Ctx(r.Context()).Info().
				Str("event", "request").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", rec.status).
				Int64("dur_ms", dur.Milliseconds()).
				Str("ip", rate.ClientIP(r))
			if ri := infoFrom(r.Context()); ri != nil && ri.apiKey != "" {
				ev = ev.Str("api", ri.apiKey)
			}
			ev.Msg("")
		})
	}
}

// CORS allows cross-origin requests from any origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Admin-Token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit enforces per-client-IP rate limiting.
func RateLimit(lm *rate.LimiterMap) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.Allow(rate.ClientIP(r)) {
				jsonutil.Error(w, http.StatusTooManyRequests, "rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Auth validates the X-API-Key header using store.
func Auth(store auth.KeyValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				jsonutil.Error(w, http.StatusUnauthorized, "missing api key")
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			ok, err := store.Validate(ctx, key)
			if errors.Is(err, auth.ErrMissingKey) {
				jsonutil.Error(w, http.StatusForbidden, "invalid api key")
				return
			}
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Str("event", "key_lookup_failed").Msg("")
				jsonutil.Error(w, http.StatusServiceUnavailable, "key store unavailable")
				return
			}
			if !ok {
				jsonutil.Error(w, http.StatusForbidden, "invalid or inactive api key")
				return
			}
			if ri := infoFrom(r.Context()); ri != nil {
				ri.apiKey = auth.HashPrefix(key)
			}
			next.ServeHTTP(w, r)
		})
	}
}
