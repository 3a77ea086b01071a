package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

// FileHandler manages the store catalog.
type FileHandler struct {
	db *gorm.DB
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(db *gorm.DB) *FileHandler {
	return &FileHandler{db: db}
}

// createCategoryRequest defines the category creation body.
type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCategory adds a store category.
func (h *FileHandler) CreateCategory(c *gin.Context) {
	var body createCategoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	category := models.Category{Name: name, Description: body.Description}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&category).Error; errCreate != nil {
		if dbpkg.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create category failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": category.ID, "name": category.Name})
}

// createFileRequest defines the file creation body.
type createFileRequest struct {
	CategoryID  uint64 `json:"category_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PriceCoins  int64  `json:"price_coins"`
	FileURL     string `json:"file_url"`
}

// CreateFile adds a technical file to the catalog.
func (h *FileHandler) CreateFile(c *gin.Context) {
	var body createFileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	fileURL := strings.TrimSpace(body.FileURL)
	if title == "" || fileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and file_url are required"})
		return
	}
	if body.PriceCoins < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_coins must not be negative"})
		return
	}

	var category models.Category
	if errFind := h.db.WithContext(c.Request.Context()).
		First(&category, body.CategoryID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query category failed"})
		return
	}

	file := models.TechnicalFile{
		CategoryID:  category.ID,
		Title:       title,
		Description: body.Description,
		ImageURL:    strings.TrimSpace(body.ImageURL),
		PriceCoins:  body.PriceCoins,
		FileURL:     fileURL,
		IsAvailable: true,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&file).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create file failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          file.ID,
		"title":       file.Title,
		"price_coins": file.PriceCoins,
	})
}

// ListFiles returns catalog files including unavailable ones.
func (h *FileHandler) ListFiles(c *gin.Context) {
	var files []models.TechnicalFile
	if errList := h.db.WithContext(c.Request.Context()).
		Preload("Category").
		Order("id ASC").
		Find(&files).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query files failed"})
		return
	}

	resp := make([]gin.H, 0, len(files))
	for _, file := range files {
		resp = append(resp, gin.H{
			"id":           file.ID,
			"category":     file.Category.Name,
			"title":        file.Title,
			"price_coins":  file.PriceCoins,
			"is_available": file.IsAvailable,
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": resp})
}

// setAvailabilityRequest defines the availability toggle body.
type setAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// SetAvailability toggles whether a file can be purchased.
func (h *FileHandler) SetAvailability(c *gin.Context) {
	fileID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	var body setAvailabilityRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var file models.TechnicalFile
	if errFind := h.db.WithContext(c.Request.Context()).
		First(&file, fileID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query file failed"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&file).Update("is_available", body.IsAvailable).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update file failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": file.ID, "is_available": body.IsAvailable})
}
