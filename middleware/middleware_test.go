package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"food-ordering-api/auth"
	"food-ordering-api/config"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *auth.Issuer, *models.User) {
	t.Helper()
	db, err := config.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	user := &models.User{Email: "ola@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)

	issuer := auth.NewIssuer("secret", 0)
	r := gin.New()
	r.Use(RequestLogger())
	authed := r.Group("/", AuthRequired(issuer, db))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID, "role": GetRole(c)})
	})
	authed.GET("/admin", RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	authed.GET("/promote", func(c *gin.Context) {
		db.Model(CurrentUser(c)).Update("role", models.RoleAdmin)
		c.Status(http.StatusNoContent)
	})
	return r, issuer, user
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

func TestAuthRequired(t *testing.T) {
	r, issuer, user := setup(t)

	w := get(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Could not validate credentials")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	token, err := issuer.Issue(user, 0)
	require.NoError(t, err)
	w = get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"role":"user"}`, w.Body.String())

	ghost, err := issuer.Issue(&models.User{ID: 99, Role: models.RoleAdmin}, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", ghost).Code)
}

func TestRoleIsReadFromDatabase(t *testing.T) {
	r, issuer, user := setup(t)
	token, err := issuer.Issue(user, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", token).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/promote", token).Code)
	// same token, new role
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", token).Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(2)
	r := gin.New()
	r.GET("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	w := get(r, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter := NewIPRateLimiter(2)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	blocked := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 18, blocked)
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	limiter := NewIPRateLimiter(1)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"10.0.0.1"}))
	r.POST("/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 3, limiter.Len())
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewIPRateLimiter(5)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("198.51.100.1")
	now = now.Add(5 * time.Minute)
	limiter.Allow("198.51.100.2")
	require.Equal(t, 2, limiter.Len())

	limiter.Cleanup(2 * time.Minute)
	assert.Equal(t, 1, limiter.Len())

	now = now.Add(3 * time.Minute)
	limiter.Cleanup(2 * time.Minute)
	assert.Zero(t, limiter.Len())
}

func TestRequestIDPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
