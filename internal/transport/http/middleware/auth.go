package httpmw

import (
	"context"
	"net/http"

	"github.com/wedding-dream/messaging-service/internal/auth"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

type Authenticator interface {
	Resolve(r *http.Request) auth.Identity
}

// AuthMiddleware резолвит bearer-токен в Identity; аноним не проходит.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := a.Resolve(r)
			if ident.Anonymous {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromCtx(ctx context.Context) auth.Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if ident, ok := v.(auth.Identity); ok {
			return ident
		}
	}
	return auth.AnonymousIdentity
}
