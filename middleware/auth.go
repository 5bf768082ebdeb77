package middleware

import (
	"net/http"
	"strings"

	"food-ordering-api/auth"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	userKey   = "user"
	userIDKey = "userID"
	roleKey   = "role"
)

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
}

// AuthRequired validates the bearer token and loads the user it names.
// The role used for authorization is the one stored in the database, not the
// one embedded in the token, so role changes apply without a new login.
func AuthRequired(issuer *auth.Issuer, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c)
			return
		}
		claims, err := issuer.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			unauthorized(c)
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			unauthorized(c)
			return
		}
		c.Set(userKey, &user)
		c.Set(userIDKey, user.ID)
		c.Set(roleKey, user.Role)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := GetRole(c)
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Brak uprawnień"})
	}
}

// CurrentUser returns the user loaded by AuthRequired
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	return val.(*models.User)
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(roleKey)
	role, _ := val.(models.UserRole)
	return role
}
