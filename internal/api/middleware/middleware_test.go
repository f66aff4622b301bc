package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homedeck/homedeck/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.NoRoute(NoRoute)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, "/health")
	r := newRouter(rl.Handler())

	for i := range 2 {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
}

func TestRateLimiter_BoundedTable(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.getLimiter("203.0.113.1").Allow())

	for i := range maxLimiters {
		rl.getLimiter("10.0." + strconv.Itoa(i/256) + "." + strconv.Itoa(i%256))
		if i%1000 == 0 {
			// keep the first client recently used
			rl.getLimiter("203.0.113.1")
		}
	}
	assert.LessOrEqual(t, rl.limiters.Len(), maxLimiters)

	// a recently seen client keeps its exhausted bucket
	assert.False(t, rl.getLimiter("203.0.113.1").Allow())
	// the least recently seen one was evicted
	assert.False(t, rl.limiters.Contains("10.0.0.0"))
	assert.True(t, rl.limiters.Contains("10.0.0.1"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name            string
		origin          string
		requestOrigin   string
		wantCode        int
		wantOrigin      string
		wantCredentials string
	}{
		{"disabled", "", "https://evil.example.com", http.StatusOK, "", ""},
		{"wildcard", "*", "https://any.example.com", http.StatusOK, "*", ""},
		{"specific", "https://app.example.com", "https://app.example.com", http.StatusOK, "https://app.example.com", "true"},
		{"other origin rejected", "https://app.example.com", "https://evil.example.com", http.StatusForbidden, "", ""},
		{"same origin request", "https://app.example.com", "", http.StatusOK, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(CORS(tt.origin))

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	t.Run("preflight", func(t *testing.T) {
		r := newRouter(CORS("https://app.example.com"))
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")

		w := serve(r, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := newRouter(SecurityHeaders())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	tests := []struct {
		name     string
		body     string
		chunked  bool
		wantCode int
	}{
		{"within limit", `{"a":1}`, false, http.StatusOK},
		{"declared too large", strings.Repeat("x", 17), false, http.StatusRequestEntityTooLarge},
		{"unknown length too large", strings.Repeat("x", 64), true, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID(), RequestLogger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = serve(r, req)
	assert.Equal(t, "client-id", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := newRouter(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error","responseObject":null,"statusCode":500}`, w.Body.String())
}

func TestNoRoute(t *testing.T) {
	r := newRouter()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found","responseObject":null,"statusCode":404}`, w.Body.String())
}

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	token, err := issuer.Generate(auth.Identity{UserID: 7, Name: "alice"})
	require.NoError(t, err)

	r := newRouter()
	r.GET("/me", RequireAuth(issuer), func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, id)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing", "", http.StatusUnauthorized, "Authentication required"},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, "Authentication required"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Authentication required"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer " + token, http.StatusOK, `"UserID":7`},
		{"lowercase scheme", "bearer " + token, http.StatusOK, `"UserID":7`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	r := newRouter(m.Middleware())
	r.GET("/metrics", m.Handler())

	serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `path="/ping"`)
	assert.Contains(t, body, `path="unmatched"`)
}
