// Package front wires the customer-facing API routes.
package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/activation"
	"github.com/ectroshop9/coinshop/internal/config"
	"github.com/ectroshop9/coinshop/internal/http/api/front/handlers"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/recharge"
	"github.com/ectroshop9/coinshop/internal/sales"
	"github.com/ectroshop9/coinshop/internal/security"
)

// RegisterFrontRoutes registers public and authenticated customer routes.
func RegisterFrontRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, activationSvc *activation.Service, rechargeSvc *recharge.Service, salesSvc *sales.Service) {
	if r == nil || db == nil {
		return
	}

	frontGroup := r.Group("/v0/front")

	accountHandler := handlers.NewAccountHandler(activationSvc)
	frontGroup.POST("/accounts/temporary", accountHandler.CreateTemporary)
	frontGroup.POST("/accounts/reactivate", accountHandler.Reactivate)
	frontGroup.POST("/accounts/recover-serial", accountHandler.RecoverSerial)
	frontGroup.POST("/login", accountHandler.Login)

	// Activation only needs a valid token; the account is still inactive.
	authed := frontGroup.Group("")
	authed.Use(customerAuthMiddleware(db, jwtCfg))
	authed.POST("/accounts/activate", accountHandler.Activate)

	// Everything else requires a fully activated account.
	active := authed.Group("")
	active.Use(requireActiveCustomer())

	walletHandler := handlers.NewWalletHandler(db, rechargeSvc)
	active.GET("/wallet", walletHandler.Status)
	active.POST("/wallet/recharge", walletHandler.Recharge)

	catalogHandler := handlers.NewCatalogHandler(db)
	active.GET("/categories", catalogHandler.Categories)
	active.GET("/categories/:id/files", catalogHandler.FilesByCategory)

	purchaseHandler := handlers.NewPurchaseHandler(db, salesSvc)
	active.POST("/purchases", purchaseHandler.Purchase)
	active.GET("/purchases", purchaseHandler.List)
	active.POST("/purchases/:id/download", purchaseHandler.Download)

	notificationHandler := handlers.NewNotificationHandler(db)
	active.GET("/notifications", notificationHandler.List)
	active.POST("/notifications/:id/read", notificationHandler.MarkRead)
}

// customerAuthMiddleware validates customer JWTs and loads the customer
// into context. Inactive customers pass; handlers that need an active
// account sit behind requireActiveCustomer.
func customerAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
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
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseCustomerToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.Refresh {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "refresh token not accepted here"})
			return
		}

		var customer models.Customer
		if errFind := db.WithContext(c.Request.Context()).First(&customer, claims.CustomerID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "customer not found"})
			return
		}

		c.Set("customerID", customer.ID)
		c.Set("customerActive", customer.IsActive)
		c.Next()
	}
}

// requireActiveCustomer rejects customers that have not completed
// activation or reactivation.
func requireActiveCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		active, _ := c.Get("customerActive")
		if isActive, ok := active.(bool); !ok || !isActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account inactive, complete activation first"})
			return
		}
		c.Next()
	}
}
