package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"filmflow/internal/i18n"
)

// InternalTokenHeader carries the service-to-service token.
const InternalTokenHeader = "X-Internal-Service-Token"

type sourceServiceKey struct{}

// SignServiceToken issues a token for the calling service, valid for ttl.
func SignServiceToken(secret, service string, ttl time.Duration) (string, error) {
	now := time.Now()
	return SignJWT(secret, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   service,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}})
}

// InternalAuth guards routes called by trusted services. An empty secret
// rejects every request.
func InternalAuth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With().Str("path", r.URL.Path).Logger()
			token := r.Header.Get(InternalTokenHeader)
			if secret == "" || token == "" {
				log.Warn().Msg("internal token missing or internal auth disabled")
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
				return
			}
			claims, err := VerifyJWT(secret, token)
			if err != nil {
				log.Warn().Err(err).Str("token", tokenSnippet(token)).Msg("internal token rejected")
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
				return
			}
			log.Debug().Str("source_service", claims.Subject).Msg("internal request authorized")
			ctx := context.WithValue(r.Context(), sourceServiceKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SourceServiceFromContext names the service that made an internal call.
func SourceServiceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sourceServiceKey{}).(string); ok {
		return v
	}
	return ""
}

func tokenSnippet(token string) string {
	if len(token) > 15 {
		return token[:15] + "..."
	}
	return token
}
