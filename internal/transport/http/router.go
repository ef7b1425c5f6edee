package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-mail-verify/internal/application/mail"
	"github.com/go-mail-verify/internal/application/verification"
	"github.com/go-mail-verify/internal/config"
	"github.com/go-mail-verify/internal/domain"
	"github.com/go-mail-verify/internal/transport/http/handler"
	appmiddleware "github.com/go-mail-verify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps holds the application services and optional collaborators for the router.
type Deps struct {
	Verification verification.Service
	Mail         mail.Service
	// Verifier guards the email endpoints. When nil they are mounted only if
	// the config explicitly allows unauthenticated email.
	Verifier appmiddleware.TokenVerifier
	// Limiter throttles the public verification endpoints; nil disables it.
	Limiter *appmiddleware.RateLimiter
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.MethodNotAllowed(handler.MethodNotAllowed(http.MethodPost))

	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = deps.Limiter.Limit
	}
	guard := []func(http.Handler) http.Handler{}
	if deps.Verifier != nil {
		guard = append(guard, appmiddleware.Auth(deps.Verifier), appmiddleware.RequireRole(domain.RoleAdmin))
	}
	mountEmail := deps.Verifier != nil || cfg.AllowUnauthenticatedEmail

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(deps.Verification)
	emailH := handler.NewEmailHandler(deps.Mail)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/health-check", func(r chi.Router) {
			r.MethodNotAllowed(handler.MethodNotAllowed(http.MethodGet))
			r.Get("/{action}", healthH.Ping)
		})

		r.Route("/verification", func(r chi.Router) {
			r.Use(limit)
			r.Post("/send-code", verifyH.SendCode)
			r.Post("/verify-code", verifyH.VerifyCode)
		})

		if mountEmail {
			r.Route("/emails", func(r chi.Router) {
				r.Use(guard...)
				r.Post("/custom", emailH.SendCustom)
				r.Post("/template", emailH.SendTemplate)
			})
		}
	})

	return r
}

// DefaultLimiter is 5 requests/second with a burst of 10 per client IP.
func DefaultLimiter() *appmiddleware.RateLimiter {
	return appmiddleware.NewRateLimiter(rate.Limit(5), 10)
}
