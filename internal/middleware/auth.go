package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"cloud-auth/internal/model"
)

type userResolver interface {
	Resolve(ctx context.Context, tokenString string) (model.User, error)
}

type contextKey string

const currentUserContextKey contextKey = "current_user"

type AuthMiddleware struct {
	resolver userResolver
}

func NewAuthMiddleware(resolver userResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth validates the bearer token and injects the resolved user into
// the request context. Token decode failures, unknown subjects and inactive
// accounts all come back as a 401 from the resolver.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthError(w, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		token := strings.TrimSpace(header[7:])
		user, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			writeAuthError(w, "UNAUTHORIZED", "could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeAuthError(w, "UNAUTHORIZED", "authentication required")
			return
		}

		if !user.IsSuperuser {
			writeAuthError(w, "FORBIDDEN", "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(currentUserContextKey).(model.User)
	return user, ok
}

// writeAuthError renders an authorization failure: FORBIDDEN becomes a 403,
// everything else a 401 with a WWW-Authenticate challenge.
func writeAuthError(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
