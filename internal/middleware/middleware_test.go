package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"story-branches/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeVerifier(ctx context.Context, token string) (*models.Claims, error) {
	switch token {
	case "user":
		return &models.Claims{UID: "u1", Role: models.RoleUser}, nil
	case "mod":
		return &models.Claims{UID: "m1", Role: models.RoleModerator}, nil
	case "expired":
		return nil, models.ErrTokenExpired
	case "broken":
		return nil, fmt.Errorf("%w: bad signature", models.ErrTokenInvalid)
	}
	return nil, fmt.Errorf("verifier backend down")
}

func newRouter(logger *zap.Logger, roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(GinZapLogger(logger))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/me", AuthMiddleware(fakeVerifier, logger, roles...), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": actor.UID, "role": actor.Role})
	})
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(zap.NewNop())

	cases := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"expired", "Bearer expired", http.StatusUnauthorized},
		{"invalid", "Bearer broken", http.StatusUnauthorized},
		{"verifier failure", "Bearer ???", http.StatusInternalServerError},
		{"ok", "Bearer user", http.StatusOK},
		{"lowercase scheme", "bearer user", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, "/me", tc.auth)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	w := do(r, "/me", "Bearer user")
	assert.JSONEq(t, `{"uid":"u1","role":"user"}`, w.Body.String())
}

func TestAuthMiddleware_RequiredRole(t *testing.T) {
	r := newRouter(zap.NewNop(), models.RoleModerator)

	assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer user").Code)
	assert.Equal(t, http.StatusOK, do(r, "/me", "Bearer mod").Code)
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()
	r := gin.New()
	r.GET("/mod", AuthMiddleware(fakeVerifier, logger), RequireRole(logger, models.RoleModerator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/bare", RequireRole(logger, models.RoleModerator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusForbidden, do(r, "/mod", "Bearer user").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/mod", "Bearer mod").Code)
	// без AuthMiddleware пользователя в контексте нет
	assert.Equal(t, http.StatusUnauthorized, do(r, "/bare", "Bearer mod").Code)
}

func TestRateLimitByActor(t *testing.T) {
	logger := zap.NewNop()
	store := NewRateLimitStore(nil, RateLimitConfig{Rate: time.Minute, Limit: 2})
	r := gin.New()
	r.POST("/illustrate", AuthMiddleware(fakeVerifier, logger), RateLimitByActor(store, logger), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	post := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/illustrate", nil)
		req.Header.Set("Authorization", auth)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusAccepted, post("Bearer user").Code)
	assert.Equal(t, http.StatusAccepted, post("Bearer user").Code)
	w := post("Bearer user")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeRateLimited)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// счетчик у каждого пользователя свой
	assert.Equal(t, http.StatusAccepted, post("Bearer mod").Code)
}

func TestGinZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := newRouter(zap.New(core))

	w := do(r, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Zero(t, logs.FilterMessage("Request completed").Len())

	req := httptest.NewRequest(http.MethodGet, "/me?x=1", nil)
	req.Header.Set("Authorization", "Bearer user")
	req.Header.Set(requestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))

	entries := logs.FilterMessage("Request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/me?x=1", fields["path"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "u1", fields["uid"])

	do(r, "/me", "")
	assert.Equal(t, 1, logs.FilterMessage("Client error").Len())
}
