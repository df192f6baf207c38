package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/pkg/jwt"
	"leadflow.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// SessionIDHeader carries the opaque session id for cookie-less browser
	// clients whose tokens live server-side in Redis
	SessionIDHeader = "X-Session-Id"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// AuthMiddleware authenticates requests with either a Bearer JWT or a
// session id resolved through the encrypted Redis session store.
func AuthMiddleware(jwtService *jwt.JWTService, sessionStore *redis.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if sessionID := c.GetHeader(SessionIDHeader); sessionID != "" && sessionStore != nil {
			session, err := sessionStore.GetSession(c.Request.Context(), sessionID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid or expired session",
				})
				return
			}
			tokenString = session.AccessToken
		}

		if tokenString == "" {
			authHeader := c.GetHeader(AuthorizationHeader)
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Authorization header is required",
				})
				return
			}
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid authorization format. Use: Bearer <token>",
				})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, BearerPrefix)
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// GetActor assembles the authenticated actor from the gin context.
func GetActor(c *gin.Context) (*entities.Actor, bool) {
	idVal, exists := c.Get(UserIDKey)
	if !exists {
		return nil, false
	}
	userID, ok := idVal.(uuid.UUID)
	if !ok {
		return nil, false
	}

	email, _ := c.Get(UserEmailKey)
	role, _ := c.Get(UserRoleKey)

	actor := &entities.Actor{ID: userID}
	if s, ok := email.(string); ok {
		actor.Email = s
	}
	if s, ok := role.(string); ok {
		actor.Role = entities.UserRole(s)
	}
	return actor, true
}

// RequireRole creates a middleware that requires one of the given roles.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User role not found",
			})
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Insufficient permissions",
		})
	}
}

// RequireAdmin creates a middleware that requires an admin-grade role.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin, entities.UserRoleSuperAdmin)
}

// RequireSuperAdmin creates a middleware that requires the super_admin role.
func RequireSuperAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleSuperAdmin)
}
