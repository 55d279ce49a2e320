package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CookieName is the admin session cookie.
const CookieName = "kiosk_admin"

// Auth guards operator routes with a session cookie issued at login. The token
// is generated per process, so a restart logs every operator out.
type Auth struct {
	token string
}

func NewAuth() *Auth {
	return &Auth{token: uuid.NewString()}
}

// Token is the cookie value that grants access.
func (a *Auth) Token() string {
	return a.token
}

// Authenticated reports whether the request carries a valid session cookie.
func (a *Auth) Authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(a.token)) == 1
}

// Require lets authenticated requests through. API calls get 401, page
// requests are redirected to the login page.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Authenticated(r) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") ||
			r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
			r.Header.Get("Content-Type") == "application/json" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
