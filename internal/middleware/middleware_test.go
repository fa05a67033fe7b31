package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-be/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestCors(t *testing.T) {
	handler := CORS("http://localhost:3000")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Normal request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")

	t.Run("Missing Token", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.UserIDFrom(r.Context())
			assert.False(t, ok, "Context should not contain user ID")
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		AuthMiddleware(tokens)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		AuthMiddleware(tokens)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		tokenString, err := tokens.Issue(auth.Identity{UserID: 1, Email: "a@b.c", Role: auth.RoleUser})
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, uint(1), userID)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(tokens)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Token Signed With Other Secret", func(t *testing.T) {
		foreign, err := auth.NewTokenManager("other-secret").Issue(auth.Identity{UserID: 1})
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+foreign)
		w := httptest.NewRecorder()

		AuthMiddleware(tokens)(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		w := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := auth.UserIDFrom(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})

		AuthMiddleware(tokens)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireUserAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name      string
		identity  *auth.Identity
		wantUser  int
		wantAdmin int
	}{
		{"anonymous", nil, http.StatusUnauthorized, http.StatusUnauthorized},
		{"user", &auth.Identity{UserID: 2, Role: auth.RoleUser}, http.StatusOK, http.StatusForbidden},
		{"admin", &auth.Identity{UserID: 3, Role: auth.RoleAdmin}, http.StatusOK, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tc.identity))
			}

			w := httptest.NewRecorder()
			RequireUser(ok).ServeHTTP(w, req)
			assert.Equal(t, tc.wantUser, w.Code)

			w = httptest.NewRecorder()
			RequireAdmin(ok).ServeHTTP(w, req)
			assert.Equal(t, tc.wantAdmin, w.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter("internal-secret", "/webhooks/payment")
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Strict tier exhausts after burst", func(t *testing.T) {
		var last int
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			last = w.Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})

	t.Run("Tiers are isolated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Internal header selects internal tier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", nil)
		req.Header.Set("X-Service-Auth", "internal-secret")
		_, _, tier := l.resolveRateTier(req)
		assert.Equal(t, "internal", tier)
	})

	t.Run("Cleanup evicts idle visitors", func(t *testing.T) {
		l.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
		l.cleanup()
		l.mu.Lock()
		defer l.mu.Unlock()
		assert.Empty(t, l.visitors)
	})
}
