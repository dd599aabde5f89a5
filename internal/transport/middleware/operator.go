package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// OperatorAuth guards the sync control endpoints with a static operator
// API key checked against the X-Api-Key header. Comparison is constant
// time.
func OperatorAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Api-Key")
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"message": "missing or invalid operator API key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
