package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/demointeriors/tour-service/internal/logging"
	"github.com/demointeriors/tour-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// OptionalAuthMiddleware parses JWT if present and sets claims into context.
// It never rejects the request; use EditorMiddleware/AdminMiddleware on
// protected routes.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			// ignore malformed header in optional mode
			c.Next()
			return
		}

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			c.Next()
			return
		}

		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err == nil && token != nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AuthMiddleware enforces a valid JWT
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			logging.Error("JWT_SECRET not set", nil, nil)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server not configured"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// EditorMiddleware requires ADMIN or EDITOR role for content writes
func EditorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := contextRole(c)
		if role != models.RoleAdmin && role != models.RoleEditor {
			c.JSON(http.StatusForbidden, gin.H{"error": "Editor access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware requires strict ADMIN role for org administration
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if contextRole(c) != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	if v, ok := claims["user_id"]; ok {
		c.Set("user_id", v)
	}
	if v, ok := claims["email"]; ok {
		c.Set("email", v)
	}
	if v, ok := claims["org_id"]; ok {
		c.Set("org_id", v)
	}
	if v, ok := claims["role"].(string); ok {
		c.Set("role", v)
	}
}

func contextRole(c *gin.Context) models.Role {
	roleVal, exists := c.Get("role")
	if !exists {
		return ""
	}
	role, _ := roleVal.(string)
	return models.Role(role)
}
