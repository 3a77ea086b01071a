package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/config"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/security"
)

// AuthHandler handles administrator authentication.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// loginRequest defines the admin login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an administrator and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}

	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("username = ?", username).
		First(&admin).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !admin.Active || !security.CheckPassword(admin.Password, password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errSign := security.GenerateAdminToken(h.jwtCfg.Secret, admin.ID, admin.Username, h.jwtCfg.AccessExpiry)
	if errSign != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "username": admin.Username})
}
