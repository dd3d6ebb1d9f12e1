package auth

import (
	"net/http"
	"strings"

	"github.com/evita-erp/evita-erp/internal/platform/httpx"
	"github.com/evita-erp/evita-erp/internal/shared"
)

// RequireAuth rejects requests without a valid bearer token and stores
// the resolved identity in the request context.
func RequireAuth(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token requerido")
				return
			}
			sess, err := service.ResolveToken(r.Context(), token)
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token invalido o expirado")
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), &shared.Identity{
				UserID: sess.UserID,
				Email:  sess.Email,
				Token:  token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
