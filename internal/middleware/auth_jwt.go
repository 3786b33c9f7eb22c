package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"filmflow/internal/domain"
	"filmflow/internal/i18n"
)

var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims are issued by the external auth service. Subject is the user id.
type Claims struct {
	Plan   string `json:"plan,omitempty"`
	Locale string `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// SignJWT issues an HS256 token for claims.
func SignJWT(secret string, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyJWT checks the signature and expiry of token and returns its claims.
func VerifyJWT(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrTokenInvalid)
	}
	return claims, nil
}

// NewUserClaims builds claims for a user token valid for ttl.
func NewUserClaims(userID string, plan domain.UserPlan, locale string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Plan:   string(plan),
		Locale: locale,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// AuthJWT requires a valid bearer token and stores the caller identity in the
// request context.
func AuthJWT(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil {
				var claims *Claims
				claims, err = VerifyJWT(secret, token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
					return
				}
			}
			logger.Debug().Err(err).Str("path", r.URL.Path).Msg("auth rejected")
			writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", i18n.MsgUnauthorized)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrTokenMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

func contextWithClaims(ctx context.Context, claims *Claims) context.Context {
	id := domain.Identity{
		UserID: claims.Subject,
		Plan:   domain.ParseUserPlan(claims.Plan),
		Locale: LocaleFromContext(ctx),
	}
	if claims.Locale != "" {
		id.Locale = i18n.Match(claims.Locale, id.Locale)
		ctx = context.WithValue(ctx, LocaleKey, id.Locale)
	}
	return ContextWithIdentity(ctx, id)
}

// ContextWithIdentity stores id in ctx.
func ContextWithIdentity(ctx context.Context, id domain.Identity) context.Context {
	if strings.TrimSpace(id.UserID) == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
