package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/resp"
	"zodiac_backend/pkg/token"
)

// accessTokenQuery Браузерный websocket не умеет слать заголовки
const accessTokenQuery = "access_token"

// Auth checks the bearer access token and puts the player and session of its
// claims into the request context.
func Auth(secretKey []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				resp.WriteError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			claims, err := token.VerifyToken(raw, secretKey)
			if err != nil {
				logger.Debug("rejected access token", zap.Error(err))
				resp.WriteError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			ctx := service.WithSession(r.Context(), claims.Subject, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value)
	}
	return r.URL.Query().Get(accessTokenQuery)
}
