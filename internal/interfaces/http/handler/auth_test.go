package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	loginErr  error
	loggedOut []string
}

func (f *fakeAuthenticator) Login(username, password string) (*auth.Token, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	if username != "admin" || password != "secret" {
		return nil, "", auth.ErrInvalidCredentials
	}
	return &auth.Token{
		AccessToken: "tok",
		TokenType:   "Bearer",
		ExpiresAt:   time.Date(2026, 3, 18, 16, 0, 0, 0, time.UTC),
	}, "admin", nil
}

func (f *fakeAuthenticator) Logout(_ context.Context, claims *auth.Claims) error {
	f.loggedOut = append(f.loggedOut, claims.Username)
	return nil
}

func newAuthRouter(a Authenticator, claims *auth.Claims) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	})
	NewAuthHandler(a).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(engine, req)
}

func TestAuthHandler_Login(t *testing.T) {
	engine := newAuthRouter(&fakeAuthenticator{}, nil)

	w := postJSON(engine, "/api/v1/auth/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode[dto.LoginResponse](t, w)
	assert.Equal(t, dto.LoginResponse{
		AccessToken: "tok",
		TokenType:   "Bearer",
		ExpiresAt:   "2026-03-18T16:00:00Z",
		Username:    "admin",
		Role:        "admin",
	}, env.Data)

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"not json", `username=admin`, http.StatusBadRequest, dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(engine, "/api/v1/auth/login", tt.body)
			assert.Equal(t, tt.want, w.Code)
			env := decode[any](t, w)
			assert.True(t, env.Error)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestAuthHandler_LoginBackendFailure(t *testing.T) {
	engine := newAuthRouter(&fakeAuthenticator{loginErr: errors.New("sign: key missing")}, nil)

	w := postJSON(engine, "/api/v1/auth/login", `{"username":"admin","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode[any](t, w)
	assert.Equal(t, "Erreur interne du serveur", env.Message)
	assert.NotContains(t, w.Body.String(), "key missing")
}

func TestAuthHandler_Logout(t *testing.T) {
	a := &fakeAuthenticator{}

	w := postJSON(newAuthRouter(a, &auth.Claims{Username: "alice", Role: "editor"}), "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"alice"}, a.loggedOut)

	w = postJSON(newAuthRouter(a, nil), "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
