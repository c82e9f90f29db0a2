package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avmusatov/tunebase/internal/apperr"
)

var testSigningKey = []byte("test signing key")

func TestBuildAndParseToken(t *testing.T) {
	theAuth := New(testSigningKey, time.Minute)

	t.Run("round trip returns the asserted user", func(t *testing.T) {
		tokenString, err := theAuth.BuildToken("user-1")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		userID, err := theAuth.ParseToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("expired token is classified as expired", func(t *testing.T) {
		expiredAuth := New(testSigningKey, -time.Minute)
		tokenString, err := expiredAuth.BuildToken("user-1")
		require.NoError(t, err)

		_, err = expiredAuth.ParseToken(tokenString)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := theAuth.ParseToken("garbage")
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("token signed with another key is malformed", func(t *testing.T) {
		otherAuth := New([]byte("another signing key"), time.Minute)
		tokenString, err := otherAuth.BuildToken("user-1")
		require.NoError(t, err)

		_, err = theAuth.ParseToken(tokenString)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("token without a user is malformed", func(t *testing.T) {
		tokenString, err := theAuth.BuildToken("")
		require.NoError(t, err)

		_, err = theAuth.ParseToken(tokenString)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) apperr.Response {
	t.Helper()

	var body apperr.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func TestAuthenticateMiddleware(t *testing.T) {
	theAuth := New(testSigningKey, time.Minute)

	var seenUserID string
	var seenOK bool
	handler := theAuth.Authenticate(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		seenUserID, seenOK = UserIDFromContext(request.Context())
		response.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header is rejected before the handler", func(t *testing.T) {
		seenOK = false
		request := httptest.NewRequest(http.MethodPost, "/api/playlists", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, request)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, seenOK, "the handler should not run")

		body := decodeErrorBody(t, rec)
		assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/playlists", nil)
		request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, request)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/api/playlists", nil)
		request.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, request)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token carries a distinguishable message", func(t *testing.T) {
		expiredAuth := New(testSigningKey, -time.Minute)
		tokenString, err := expiredAuth.BuildToken("user-1")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/api/playlists", nil)
		request.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, request)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeErrorBody(t, rec)
		assert.Equal(t, "token expired", body.Error)
	})

	t.Run("valid token reaches the handler with identity in context", func(t *testing.T) {
		tokenString, err := theAuth.BuildToken("user-42")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodPost, "/api/playlists", nil)
		request.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, request)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, seenOK)
		assert.Equal(t, "user-42", seenUserID)
	})
}
