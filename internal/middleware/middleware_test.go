package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-terminal/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(tokens *auth.Tokens, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger))
	api := r.Group("/api", AuthMiddleware(tokens))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(UserIDKey), "role": c.MustGet(RoleKey)})
	})
	api.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	r := newRouter(tokens, zap.NewNop())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cashier, err := tokens.Generate(2, "cashier")
	require.NoError(t, err)
	w = get(r, "/api/me", cashier)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":2,"role":"cashier"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	r := newRouter(tokens, zap.NewNop())

	cashier, err := tokens.Generate(2, "cashier")
	require.NoError(t, err)
	admin, err := tokens.Generate(1, "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/admin", cashier).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/api/admin", admin).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(auth.NewTokens("test-secret", time.Hour), zap.New(core))

	get(r, "/api/me", "")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/api/me", fields["path"])
	assert.EqualValues(t, http.StatusUnauthorized, fields["status"])
}
