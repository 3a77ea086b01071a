// Package admin wires the administrator API routes.
package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/config"
	"github.com/ectroshop9/coinshop/internal/http/api/admin/handlers"
	"github.com/ectroshop9/coinshop/internal/security"
)

// RegisterAdminRoutes registers the administrator routes.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	adminGroup.POST("/login", authHandler.Login)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(jwtCfg))

	packageHandler := handlers.NewPackageHandler(db)
	authed.POST("/packages", packageHandler.Create)
	authed.GET("/packages", packageHandler.List)

	codeHandler := handlers.NewChargeCodeHandler(db)
	authed.POST("/charge-codes", codeHandler.Generate)
	authed.GET("/charge-codes", codeHandler.List)

	fileHandler := handlers.NewFileHandler(db)
	authed.POST("/categories", fileHandler.CreateCategory)
	authed.POST("/files", fileHandler.CreateFile)
	authed.GET("/files", fileHandler.ListFiles)
	authed.PUT("/files/:id/availability", fileHandler.SetAvailability)

	customerHandler := handlers.NewCustomerHandler(db)
	authed.GET("/customers", customerHandler.List)

	walletHandler := handlers.NewWalletHandler(db)
	authed.PUT("/customers/:id/wallet", walletHandler.Adjust)

	notificationHandler := handlers.NewNotificationHandler(db)
	authed.POST("/notifications", notificationHandler.Send)
}

// adminAuthMiddleware validates admin JWTs.
func adminAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, strings.TrimSpace(token))
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("adminID", claims.AdminID)
		c.Set("adminUsername", claims.Username)
		c.Next()
	}
}
