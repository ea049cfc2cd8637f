package middleware

import (
	"net/http"
	"strings"

	"spotly/internal/shared/config"
	"spotly/internal/shared/utils/response"
	"spotly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ctxCallerID = "caller_id"
	ctxRole     = "caller_role"
	ctxTenantID = "tenant_id"
)

// JWTAuthWithConfig validates the bearer token and stashes the caller
// identity (id, role, tenant) in the request context. The token itself is
// issued by the external auth provider; this middleware only verifies and
// trusts its claims.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		callerID, _ := claims["caller_id"].(string)
		roleStr, _ := claims["role"].(string)
		tenantID, _ := claims["tenant_id"].(string)

		role := users.Role(roleStr)
		if callerID == "" || tenantID == "" || !role.IsValid() {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "token is missing caller identity", nil, nil)
			c.Abort()
			return
		}

		c.Set(ctxCallerID, callerID)
		c.Set(ctxRole, role)
		c.Set(ctxTenantID, tenantID)

		c.Next()
	}
}

// RequireCapability gates a route on the static capability table. This is
// the only place authorization is decided; services never re-check roles.
func RequireCapability(cap users.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "caller identity not found in context", nil, nil)
			c.Abort()
			return
		}

		if !users.HasCapability(actor.Role, cap) {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActor extracts the authenticated caller from the request context.
func GetActor(c *gin.Context) (users.Actor, bool) {
	callerID, ok := c.Get(ctxCallerID)
	if !ok {
		return users.Actor{}, false
	}
	role, ok := c.Get(ctxRole)
	if !ok {
		return users.Actor{}, false
	}
	tenantID, ok := c.Get(ctxTenantID)
	if !ok {
		return users.Actor{}, false
	}

	return users.Actor{
		ID:       callerID.(string),
		Role:     role.(users.Role),
		TenantID: tenantID.(string),
	}, true
}
