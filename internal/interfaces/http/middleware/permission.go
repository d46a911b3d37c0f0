package middleware

import (
	"net/http"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionChecker decides whether a role may run an action on a resource
type PermissionChecker interface {
	HasPermission(role, resource, action string) (bool, error)
}

var methodToAction = map[string]string{
	http.MethodGet:    auth.ActionRead,
	http.MethodHead:   auth.ActionRead,
	http.MethodPost:   auth.ActionCreate,
	http.MethodPut:    auth.ActionUpdate,
	http.MethodPatch:  auth.ActionUpdate,
	http.MethodDelete: auth.ActionDelete,
}

// RequireResource derives the action from the HTTP method
func RequireResource(checker PermissionChecker, resource string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, ok := methodToAction[c.Request.Method]
		if !ok {
			action = auth.ActionRead
		}
		check(c, checker, resource, action, log)
	}
}

// RequirePermission requires one explicit action on resource
func RequirePermission(checker PermissionChecker, resource, action string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		check(c, checker, resource, action, log)
	}
}

func check(c *gin.Context, checker PermissionChecker, resource, action string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	claims := GetJWTClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentification requise"))
		return
	}

	allowed, err := checker.HasPermission(claims.Role, resource, action)
	if err != nil {
		log.Error("Permission check failed",
			zap.String("role", claims.Role),
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.ErrCodeInternal, "Erreur interne du serveur"))
		return
	}
	if !allowed {
		log.Warn("Permission denied",
			zap.String("username", claims.Username),
			zap.String("role", claims.Role),
			zap.String("resource", resource),
			zap.String("action", action),
		)
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Vous n'avez pas les droits pour cette action"))
		return
	}
	c.Next()
}
