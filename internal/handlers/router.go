package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cashvelo/internal/models"
	"cashvelo/internal/security"
	"cashvelo/internal/webutil"
)

const requestTimeout = 60 * time.Second

// Handlers bundles everything SetupRoutes mounts
type Handlers struct {
	Auth        *AuthHandler
	Budgets     *ResourceHandler[models.Budget, *models.Budget]
	Expenses    *ResourceHandler[models.Expense, *models.Expense]
	CreditCards *ResourceHandler[models.CreditCard, *models.CreditCard]
	Income      *ResourceHandler[models.Income, *models.Income]
	Goals       *GoalHandler
	Statements  *StatementHandler
	Middleware  *Middleware
	// AuthLimiter throttles the unauthenticated account endpoints; nil disables it
	AuthLimiter *security.RateLimiter
	// AllowedOrigin is the frontend origin permitted by CORS; empty disables CORS
	AllowedOrigin string
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// SetupRoutes builds the HTTP router
func SetupRoutes(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if h.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if h.AllowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{h.AllowedOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", webutil.HeaderAuthorization, webutil.HeaderContentType},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get("/health", Health)

		configureAuthRoutes(r, h)

		r.Group(func(r chi.Router) {
			r.Use(h.Middleware.RequireAuth)

			r.Get("/user", webutil.MakeHandler(h.Auth.CurrentUser))
			r.Post("/logout", webutil.MakeHandler(h.Auth.Logout))

			r.Route(budgetsBasePath, h.Budgets.Routes)
			r.Route(expensesBasePath, func(r chi.Router) {
				r.Get("/statement.pdf", webutil.MakeHandler(h.Statements.ExpenseStatement))
				h.Expenses.Routes(r)
			})
			r.Route(creditCardsBasePath, h.CreditCards.Routes)
			r.Route(incomeBasePath, h.Income.Routes)
			r.Route(goalsBasePath, h.Goals.Routes)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		webutil.RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

func configureAuthRoutes(r chi.Router, h Handlers) {
	r.Group(func(r chi.Router) {
		if h.AuthLimiter != nil {
			r.Use(h.AuthLimiter.Middleware)
		}
		r.Post("/signup", webutil.MakeHandler(h.Auth.Signup))
		r.Post("/login", webutil.MakeHandler(h.Auth.Login))
		r.Post("/forgot-password", webutil.MakeHandler(h.Auth.ForgotPassword))
		r.Post("/reset-password/{token}", webutil.MakeHandler(h.Auth.ResetPassword))
	})
	r.Get("/verify-reset-token/{token}", webutil.MakeHandler(h.Auth.VerifyResetToken))
}
