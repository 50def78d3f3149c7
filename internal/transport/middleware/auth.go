package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/heartmarshall/qareview/internal/auth"
	"github.com/heartmarshall/qareview/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (auth.Identity, error)
}

// Auth authenticates bearer tokens. Requests without a token pass through
// anonymously unless required is set. A token carrying adminRole marks the
// caller as an administrator.
func Auth(validator tokenValidator, adminRole string, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				if required {
					writeUnauthorized(w)
					return
				}
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			identity, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			ctx := ctxutil.WithUserID(r.Context(), identity.UserID)
			ctx = ctxutil.WithAdmin(ctx, adminRole != "" && identity.HasRole(adminRole))
			if len(identity.Roles) > 0 {
				ctx = ctxutil.WithUserRole(ctx, strings.Join(identity.Roles, ","))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
