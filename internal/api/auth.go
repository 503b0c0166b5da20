package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const headerAPIKey = "x-api-key"

// Auth guards the admin surface with a single shared API key compared in
// constant time.
type Auth struct {
	apiKey string
}

func NewAuth(apiKey string) *Auth {
	return &Auth{apiKey: apiKey}
}

// Require wraps an admin handler and rejects requests whose x-api-key
// header does not match the configured secret.
func (a *Auth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provided := strings.TrimSpace(r.Header.Get(headerAPIKey))
		if a.apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(a.apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next(w, r)
	}
}
