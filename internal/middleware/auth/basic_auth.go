package auth

import (
	"crypto/subtle"
	"net/http"

	"tender-backend/internal/lib/api"
)

// BasicAuth guards a router with a single login/password pair. An empty password
// rejects every request.
func BasicAuth(realm, username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || password == "" {
				requireAuth(w, r, realm)
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !userOK || !passOK {
				requireAuth(w, r, realm)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requireAuth(w http.ResponseWriter, r *http.Request, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	api.Error(w, r, http.StatusUnauthorized, "unauthorized")
}
