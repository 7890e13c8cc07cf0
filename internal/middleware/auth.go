package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/models"
)

// Context keys for the claims stored in gin.Context. Constants so a typo in
// a handler is a compile error, not a silently-nil lookup.
const (
	ContextKeyUserID  = "user_id"
	ContextKeyStoreID = "store_id"
	ContextKeyRole    = "role"
)

// AuthMiddleware validates the bearer token and stashes its claims in the
// request context. It runs before every handler in the /api/admin and
// /api/store groups — a missing or invalid token means the handler never
// runs and the client gets a 401.
//
// The secret is a parameter (not read from config here) so main.go does the
// wiring and tests can pass any secret.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := auth.ParseToken(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyStoreID, claims.StoreID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RequireSuperadmin gates the provisioning console group. The elevated
// operations (tenant creation, billing, cross-tenant listing, system stats)
// are superadmin-only regardless of any tenant match.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.IsSuperadmin(GetRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// Typed claim accessors. They return zero values (uuid.Nil, "") when the key
// is absent — a request that somehow skipped AuthMiddleware fails every
// store-scoped query instead of matching someone else's data.

func GetUserID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetStoreID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyStoreID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func GetRole(c *gin.Context) models.Role {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	role, ok := val.(models.Role)
	if !ok {
		return ""
	}
	return role
}
