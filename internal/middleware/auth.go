package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MCTHIAS/CathPed/internal/handler"
	"github.com/MCTHIAS/CathPed/internal/service/auth"
)

type AuthMiddleware struct {
	authSvc *auth.Service
}

func NewAuthMiddleware(authSvc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// Authenticate validates the bearer session token and attaches the
// operator to the request context. Protected operations read the
// authenticated context explicitly instead of ambient state.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization token"))
			return
		}

		principal, err := m.authSvc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired session"))
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Principal extracts the operator from an optional bearer token without
// aborting; used by the session probe endpoint.
func (m *AuthMiddleware) Principal(c *gin.Context) (string, bool) {
	token := bearerToken(c)
	if token == "" {
		return "", false
	}
	principal, err := m.authSvc.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return "", false
	}
	return principal, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
