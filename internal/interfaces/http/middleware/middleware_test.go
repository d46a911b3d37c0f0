package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	claims map[string]*auth.Claims
	err    error
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("generates one when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://admin.example.com"}

	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answers 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}

func TestBodyLimit(t *testing.T) {
	t.Run("allows request within limit", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(1024))
		router.POST("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader([]byte("small body")))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects request exceeding Content-Length limit", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(100))
		router.POST("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 200)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTooLarge, resp.Code)
	})
}

func TestJWTAuth(t *testing.T) {
	claims := &auth.Claims{Username: "alice", Role: "editor"}
	newRouter := func(a TokenAuthenticator) *gin.Engine {
		router := gin.New()
		router.Use(JWTAuth(JWTMiddlewareConfig{Authenticator: a, SkipPaths: []string{"/health"}}))
		router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })
		router.GET("/test", func(c *gin.Context) {
			assert.Equal(t, "editor", GetJWTRole(c))
			assert.Equal(t, "alice", logger.GetUser(c.Request.Context()))
			c.String(http.StatusOK, GetJWTClaims(c).Username)
		})
		return router
	}

	t.Run("valid token", func(t *testing.T) {
		router := newRouter(stubAuthenticator{claims: map[string]*auth.Claims{"good": claims}})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Bearer good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("skip path", func(t *testing.T) {
		router := newRouter(stubAuthenticator{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name   string
		header string
		err    error
		code   string
	}{
		{"missing header", "", nil, dto.ErrCodeUnauthorized},
		{"not bearer", "Basic Zm9vOmJhcg==", nil, dto.ErrCodeUnauthorized},
		{"unknown token", "Bearer bad", nil, dto.ErrCodeTokenInvalid},
		{"expired", "Bearer old", auth.ErrExpiredToken, dto.ErrCodeTokenExpired},
		{"revoked", "Bearer gone", auth.ErrTokenRevoked, dto.ErrCodeTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(stubAuthenticator{err: tt.err})
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeEnvelope(t, w)
			assert.True(t, resp.Error)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestRequireResource(t *testing.T) {
	policy, err := auth.NewPolicy("")
	require.NoError(t, err)

	newRouter := func(role string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(JWTClaimsKey, &auth.Claims{Username: "u", Role: role})
			}
			c.Next()
		})
		group := router.Group("/partners", RequireResource(policy, "partners", nil))
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		group.GET("", ok)
		group.POST("", ok)
		group.PATCH("/:id/toggle", ok)
		group.DELETE("/:id", ok)
		router.POST("/partners/import", RequirePermission(policy, "partners", auth.ActionImport, nil), ok)
		return router
	}

	tests := []struct {
		role   string
		method string
		path   string
		want   int
	}{
		{"viewer", http.MethodGet, "/partners", http.StatusOK},
		{"viewer", http.MethodPost, "/partners", http.StatusForbidden},
		{"viewer", http.MethodPost, "/partners/import", http.StatusForbidden},
		{"editor", http.MethodPost, "/partners", http.StatusOK},
		{"editor", http.MethodPatch, "/partners/1/toggle", http.StatusOK},
		{"editor", http.MethodPost, "/partners/import", http.StatusOK},
		{"editor", http.MethodDelete, "/partners/1", http.StatusForbidden},
		{"admin", http.MethodDelete, "/partners/1", http.StatusOK},
		{"", http.MethodGet, "/partners", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.role).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBodyLimitWithUploads(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimitWithUploads(10, 1000))
	router.POST("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 100)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "uploads get the larger limit")

	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 100)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
