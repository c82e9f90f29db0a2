// Package auth issues and verifies JWT bearer tokens and provides the
// middleware that authenticates incoming HTTP requests. The resolved
// user ID travels only in the request context, never in shared state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/avmusatov/tunebase/internal/apperr"
	"github.com/avmusatov/tunebase/internal/logger"
)

var (
	// ErrTokenMalformed indicates a token that does not decode or whose
	// signature does not verify under the current signing key.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenExpired indicates a well-signed token whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a dedicated type for request-context values to avoid
// collisions with other packages.
type ContextKey string

// UserIDKey is the context key under which the middleware stores the
// authenticated user's ID.
const UserIDKey ContextKey = "userID"

const bearerScheme = "Bearer "

// Auth signs and verifies access tokens. The signing key and TTL are
// fixed at startup; key rotation is out of scope.
type Auth struct {
	signingSecretKey []byte
	tokenTTL         time.Duration
}

// New creates an Auth with the given HMAC signing key and token lifetime.
func New(signingSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// BuildToken mints a signed token asserting userID until now+TTL.
func (a *Auth) BuildToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns the user ID it asserts.
// It fails with ErrTokenExpired for well-signed but stale tokens and
// ErrTokenMalformed for everything else.
func (a *Auth) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}

	return claims.UserID, nil
}

// Authenticate is the HTTP middleware applied to routes requiring an
// identity. It expects `Authorization: Bearer <token>`; on success the
// user ID is stored in the request context, otherwise the request is
// rejected with 401 before the handler runs.
func (a *Auth) Authenticate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		header := request.Header.Get("Authorization")
		if header == "" {
			apperr.WriteError(response, apperr.Unauthenticated("missing authorization header"))
			return
		}
		if !strings.HasPrefix(header, bearerScheme) {
			apperr.WriteError(response, apperr.Unauthenticated("invalid authorization header"))
			return
		}

		userID, err := a.ParseToken(strings.TrimPrefix(header, bearerScheme))
		if err != nil {
			logger.Log.Debugln("token verification failed:", err)
			if errors.Is(err, ErrTokenExpired) {
				apperr.WriteError(response, apperr.Unauthenticated("token expired"))
				return
			}
			apperr.WriteError(response, apperr.Unauthenticated("invalid token"))
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user ID placed into ctx
// by Authenticate.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}
