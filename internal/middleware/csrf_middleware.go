package middleware

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	appRedis "friendly/internal/redis"
)

// CSRFHeader is where mutating requests carry their anti-forgery token.
const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware enforces the per-session anti-forgery token on mutating
// methods. Must run after AuthMiddleware, which puts the username in the
// context. Violations get the same generic notice regardless of cause.
func CSRFMiddleware(store appRedis.CSRFStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			username, ok := GetUsernameFromContext(r.Context())
			if !ok {
				writeJSONError(w, "access unauthorized", http.StatusForbidden)
				return
			}

			valid, err := store.Check(r.Context(), username, r.Header.Get(CSRFHeader))
			if err != nil {
				log.Printf("CSRF check failed for %s: %v", username, err)
				writeJSONError(w, "access unauthorized", http.StatusForbidden)
				return
			}
			if !valid {
				writeJSONError(w, "access unauthorized", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
