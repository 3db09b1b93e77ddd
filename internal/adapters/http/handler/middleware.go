package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/user"
)

// Authenticator はトークンキーからユーザーを解決します。
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*user.User, error)
}

type principalContextKey struct{}

var principalKey = principalContextKey{}

const tokenScheme = "Token"

// RequireAuth は Authorization ヘッダのトークンを検証し、
// 解決したユーザーをリクエストコンテキストに載せるミドルウェアです。
func RequireAuth(auth Authenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}

		u, err := auth.Authenticate(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithPrincipal(r.Context(), u)))
	})
}

func tokenFromHeader(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || parts[0] != tokenScheme {
		return "", false
	}
	key := strings.TrimSpace(parts[1])
	if key == "" {
		return "", false
	}
	return key, true
}

func contextWithPrincipal(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

func principalFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(principalKey).(*user.User)
	return u, ok
}
