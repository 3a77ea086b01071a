package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
)

// CatalogHandler handles store browsing endpoints.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// categoryDTO defines the category response payload.
type categoryDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// fileDTO defines the file response payload. Source URLs never leave the
// backend; downloads go through protected links only.
type fileDTO struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	PriceCoins  int64  `json:"price_coins"`
}

// Categories returns all store categories.
func (h *CatalogHandler) Categories(c *gin.Context) {
	var categories []models.Category
	if errList := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&categories).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query categories failed"})
		return
	}

	resp := make([]categoryDTO, 0, len(categories))
	for _, row := range categories {
		resp = append(resp, categoryDTO{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

// FilesByCategory returns the available files within one category.
func (h *CatalogHandler) FilesByCategory(c *gin.Context) {
	categoryID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var files []models.TechnicalFile
	if errList := h.db.WithContext(c.Request.Context()).
		Where("category_id = ? AND is_available = ?", categoryID, true).
		Order("title ASC").
		Find(&files).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query files failed"})
		return
	}

	resp := make([]fileDTO, 0, len(files))
	for _, row := range files {
		resp = append(resp, fileDTO{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			ImageURL:    row.ImageURL,
			PriceCoins:  row.PriceCoins,
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": resp})
}
