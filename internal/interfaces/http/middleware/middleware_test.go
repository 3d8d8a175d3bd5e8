package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
	})
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	router.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, jwt *auth.JWTManager, userID, role string) http.Header {
	token, err := jwt.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	router := gin.New()
	router.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.String(http.StatusOK, userID)
	})

	w := serve(router, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = serve(router, http.MethodGet, "/me", http.Header{"Authorization": {"Token abc"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/me", bearer(t, jwt, "u-1", auth.RoleUser))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	jwt := newJWT()
	router := gin.New()
	router.GET("/admin", AuthMiddleware(jwt), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/bare", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/admin", bearer(t, jwt, "u-1", auth.RoleUser)).Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/admin", bearer(t, jwt, "a-1", auth.RoleAdmin)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/bare", nil).Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	router := gin.New()
	router.GET("/maybe", OptionalAuthMiddleware(jwt), func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			userID = "anonymous"
		}
		c.String(http.StatusOK, userID)
	})

	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/maybe", nil).Body.String())
	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/maybe", http.Header{"Authorization": {"Bearer nope"}}).Body.String())
	assert.Equal(t, "u-9", serve(router, http.MethodGet, "/maybe", bearer(t, jwt, "u-9", auth.RoleUser)).Body.String())
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://shop.example", "*.example.org"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Authorization"},
	}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/x", http.Header{"Origin": {"https://shop.example"}})
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodGet, "/x", http.Header{"Origin": {"https://api.example.org"}})
	assert.Equal(t, "https://api.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodGet, "/x", http.Header{"Origin": {"https://evilexample.org"}})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodOptions, "/x", http.Header{"Origin": {"https://shop.example"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(router, http.MethodGet, "/x", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	w = serve(router, http.MethodGet, "/x", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRequestSizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimit(8))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/x", strings.NewReader("this body is too long"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(time.Second))
	router.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/x", nil).Code)
}

type countingLimiter struct {
	hits int64
	err  error
}

func (l *countingLimiter) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	if l.err != nil {
		return 0, 0, l.err
	}
	l.hits++
	return l.hits, 30 * time.Second, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{}
	router := gin.New()
	router.Use(RateLimit(limiter, 2, logger.Discard()))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/x", nil).Code)
	w := serve(router, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(router, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "31", w.Header().Get("Retry-After"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(&countingLimiter{err: errors.New("connection refused")}, 1, logger.Discard()))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/x", nil).Code)
	}

	open := gin.New()
	open.Use(RateLimit(nil, 1, logger.Discard()))
	open.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(open, http.MethodGet, "/x", nil).Code)
}
