package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"inviteplanner/internal/delivery/http/controllers"
	"inviteplanner/internal/delivery/http/middleware"
	"inviteplanner/internal/domain"
)

// Routes bundles the controllers served by NewRouter.
type Routes struct {
	Users       *controllers.UserController
	Invitations *controllers.InvitationController
	Payments    *controllers.PaymentController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(routes Routes, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", routes.Users.SignUp)
	mux.HandleFunc("POST /auth/login", routes.Users.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(routes.Users.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(routes.Users.UpdateMe))
	mux.HandleFunc("GET /users/me/capabilities", auth(routes.Users.GetCapabilities))

	// Invitations
	mux.HandleFunc("POST /invitations", auth(routes.Invitations.Create))
	mux.HandleFunc("GET /invitations", auth(routes.Invitations.List))
	mux.HandleFunc("GET /invitations/{id}", auth(routes.Invitations.Get))
	mux.HandleFunc("PATCH /invitations/{id}", auth(routes.Invitations.Update))
	mux.HandleFunc("DELETE /invitations/{id}", auth(routes.Invitations.Delete))

	// Payments
	mux.HandleFunc("POST /payments/redeem", auth(routes.Payments.Redeem))
	mux.HandleFunc("POST /payments", admin(routes.Payments.Create))
	mux.HandleFunc("GET /payments", admin(routes.Payments.List))
	mux.HandleFunc("GET /payments/{id}", admin(routes.Payments.Get))
	mux.HandleFunc("PATCH /payments/{id}", admin(routes.Payments.Update))
	mux.HandleFunc("DELETE /payments/{id}", admin(routes.Payments.Delete))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// WithMiddleware wraps h with request IDs, request logging and CORS, outermost first.
func WithMiddleware(h http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, h)))
}
