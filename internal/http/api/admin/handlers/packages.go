package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

// PackageHandler manages subscription packages.
type PackageHandler struct {
	db *gorm.DB
}

// NewPackageHandler constructs a PackageHandler.
func NewPackageHandler(db *gorm.DB) *PackageHandler {
	return &PackageHandler{db: db}
}

// createPackageRequest defines the package creation body.
type createPackageRequest struct {
	Name      string  `json:"name"`
	CoinValue int64   `json:"coin_value"`
	Price     float64 `json:"price"`
}

// Create adds a new subscription package.
func (h *PackageHandler) Create(c *gin.Context) {
	var body createPackageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if body.CoinValue <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin_value must be positive"})
		return
	}

	pkg := models.SubscriptionPackage{
		Name:      name,
		CoinValue: body.CoinValue,
		Price:     body.Price,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
		if dbpkg.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "package name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create package failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         pkg.ID,
		"name":       pkg.Name,
		"coin_value": pkg.CoinValue,
		"price":      pkg.Price,
	})
}

// List returns all subscription packages.
func (h *PackageHandler) List(c *gin.Context) {
	var packages []models.SubscriptionPackage
	if errList := h.db.WithContext(c.Request.Context()).
		Order("id ASC").
		Find(&packages).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query packages failed"})
		return
	}

	resp := make([]gin.H, 0, len(packages))
	for _, pkg := range packages {
		resp = append(resp, gin.H{
			"id":         pkg.ID,
			"name":       pkg.Name,
			"coin_value": pkg.CoinValue,
			"price":      pkg.Price,
		})
	}
	c.JSON(http.StatusOK, gin.H{"packages": resp})
}
