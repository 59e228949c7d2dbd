package routes

import (
	"net/http"
	"time"

	"taskboard/controllers/auth"
	"taskboard/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers auth and profile routes on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// Login/register limiter: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Session limiter: 120 reads / 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, time.Minute)

	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)

	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.ProfileHandler)))).Methods(http.MethodGet)
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.UpdateProfileHandler)))).Methods(http.MethodPut)
	api.Handle("/users/ratings", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.MyRatingsHandler)))).Methods(http.MethodGet)

	// Public leaderboard
	api.Handle("/leaderboard", userLimiter.Middleware(http.HandlerFunc(auth.LeaderboardHandler))).Methods(http.MethodGet)
}
