package handler

import (
	"crypto/subtle"
	"net/http"

	"palletkiosk/internal/config"
	"palletkiosk/internal/logger"
	"palletkiosk/internal/middleware"
)

// LoginHandler handles POST /auth/login by validating password and issuing an auth cookie.
func LoginHandler(config *config.Config, auth *middleware.Auth, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password := r.FormValue("password")
		if subtle.ConstantTimeCompare([]byte(password), []byte(config.Password)) != 1 {
			logger.Warning("Failed login from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.CookieName,
			Value:    auth.Token(),
			Path:     "/",
			MaxAge:   43200, // 12 hours
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	}
}

// LogoutHandler clears the authentication cookie and redirects to the login page.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   middleware.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
