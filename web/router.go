package web

import (
	"context"
	"net/http"
	"time"

	"minicasino/auth"
	"minicasino/models"
	"minicasino/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// HealthChecker reports whether storage is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the casino's HTTP endpoints
type Handler struct {
	accounts service.AccountService
	games    service.GameService
	sessions *auth.SessionManager
	health   HealthChecker
	validate *validator.Validate
}

// NewHandler creates the HTTP handler set
func NewHandler(accounts service.AccountService, games service.GameService, sessions *auth.SessionManager, health HealthChecker) *Handler {
	return &Handler{
		accounts: accounts,
		games:    games,
		sessions: sessions,
		health:   health,
		validate: newValidator(),
	}
}

// RouterOptions tunes the middleware stack
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with middleware and all routes
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.loadSession)

		r.Get("/", h.Index)
		r.Get("/logout", h.Logout)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(redirectAuthenticated)
			r.Get("/login", h.LoginPage)
			r.Post("/login", h.Login)
			r.Get("/register", h.RegisterPage)
			r.Post("/register", h.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAccount)
			r.Get("/deposit", h.DepositPage)
			r.Post("/deposit", h.Deposit)
			r.Get("/history", h.History)

			r.Route("/game", func(r chi.Router) {
				r.Get("/coin", h.GamePage(models.GameCoin))
				r.Post("/coin", h.PlayCoin)
				r.Get("/roulette", h.GamePage(models.GameRoulette))
				r.Post("/roulette", h.PlayRoulette)
				r.Get("/slots", h.GamePage(models.GameSlots))
				r.Post("/slots", h.PlaySlots)
			})
		})
	})

	return r
}
