package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/milpress/provisioner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Run("valid bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer abc.def.ghi")
		token, err := BearerToken(r)
		require.NoError(t, err)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("lowercase scheme accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "bearer tok")
		token, err := BearerToken(r)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		_, err := BearerToken(r)
		require.Error(t, err)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := BearerToken(r)
		require.Error(t, err)
	})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "11111111-1111-1111-1111-111111111111",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpired(t *testing.T) {
	assert.True(t, tokenExpired(signedToken(t, time.Now().Add(-time.Hour))))
	assert.False(t, tokenExpired(signedToken(t, time.Now().Add(time.Hour))))
	assert.False(t, tokenExpired("not-a-jwt"))
}

type fakeResolver struct {
	ident *domain.Identity
	err   error

	gotToken string
}

func (f *fakeResolver) ResolveCaller(_ context.Context, token string) (*domain.Identity, error) {
	f.gotToken = token
	return f.ident, f.err
}

func TestAuthenticate(t *testing.T) {
	t.Run("resolved caller is placed in context", func(t *testing.T) {
		resolver := &fakeResolver{ident: &domain.Identity{ID: "u-1", Email: "boss@x.com"}}
		var seen *domain.Identity
		h := Authenticate(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = IdentityFromContext(r.Context())
		}))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u-1", seen.ID)
	})

	t.Run("missing header yields 401", func(t *testing.T) {
		h := Authenticate(&fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	})

	t.Run("expired token yields 401 without resolver call", func(t *testing.T) {
		resolver := &fakeResolver{ident: &domain.Identity{ID: "u-1"}}
		h := Authenticate(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(-time.Minute)))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, resolver.gotToken)
	})

	t.Run("resolver failure yields 401", func(t *testing.T) {
		h := Authenticate(&fakeResolver{err: assert.AnError})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty identity yields 401", func(t *testing.T) {
		h := Authenticate(&fakeResolver{ident: &domain.Identity{}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIdentityFromContext_Empty(t *testing.T) {
	assert.Nil(t, IdentityFromContext(context.Background()))
}
