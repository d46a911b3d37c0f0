package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator signs accounts in and out
type Authenticator interface {
	Login(username, password string) (*auth.Token, string, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler serves /auth routes
type AuthHandler struct {
	BaseHandler
	auth Authenticator
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// RegisterRoutes mounts /auth/login and /auth/logout.
// Logout relies on the JWT middleware having stored the claims.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.ErrCodeValidation, "Identifiant et mot de passe requis")
		return
	}

	token, role, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.log(c).Warn("login failed", zap.String("username", req.Username))
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Identifiant ou mot de passe incorrect")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.log(c).Info("login succeeded", zap.String("username", req.Username), zap.String("role", role))
	h.SuccessMessage(c, "Connexion réussie", dto.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt.Format(time.RFC3339),
		Username:    req.Username,
		Role:        role,
	})
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentification requise")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessMessage(c, "Déconnexion réussie", nil)
}
