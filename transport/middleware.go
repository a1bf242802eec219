package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-confirm/core"
	goerrors "github.com/goliatone/go-errors"
)

type contextKey string

const principalContextKey contextKey = "confirm.principal"

// Authenticator resolves a bearer credential to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (core.Principal, error)
}

// ContextWithPrincipal returns a context carrying the authenticated
// principal.
func ContextWithPrincipal(ctx context.Context, principal core.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (core.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(core.Principal)
	return principal, ok
}

// RequireAuth extracts the bearer credential, authenticates it, and stores
// the resolved principal on the request context. Requests without a valid
// credential never reach the wrapped handler.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerCredential(r)
			if credential == "" {
				writeError(w, goerrors.New("transport: authorization credential is required", goerrors.CategoryAuth).
					WithCode(http.StatusUnauthorized).
					WithTextCode(core.ConfirmErrorUnauthenticated))
				return
			}
			principal, err := auth.Authenticate(r.Context(), credential)
			if err != nil {
				writeError(w, core.AsConfirmError(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerCredential(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
