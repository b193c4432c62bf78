package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"retro-store/models"
	"retro-store/utils"
)

const (
	ContextUsername = "username"
	ContextUserType = "userType"
)

// AuthMiddleware 校验 Bearer token，写入用户名和用户类型
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserType, claims.UserType)
		c.Next()
	}
}

// AdminOnly 管理员权限，需在 AuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserType) != models.UserTypeAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Admin privileges required."})
			return
		}
		c.Next()
	}
}
