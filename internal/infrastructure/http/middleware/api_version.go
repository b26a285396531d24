package middleware

import "net/http"

// APIVersion stamps responses with X-API-Version so clients can detect upgrades.
func APIVersion(version string) func(next http.Handler) http.Handler {
	if version == "" {
		version = "1"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-API-Version", version)
			next.ServeHTTP(w, r)
		})
	}
}
