package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harwell-homes/schedcast-backend/pkg/ctxutil"
)

// Identity resolves the acting user from the X-User-Id header set by the
// authenticating gateway in front of this service. Requests without a valid
// user ID proceed anonymously; handlers that require identity reject them.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-Id")
		if raw == "" {
			next.ServeHTTP(w, r) // Anonymous
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusUnauthorized)
			return
		}
		ctx := ctxutil.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
