package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/security"
)

// maxCodeBatch bounds one generation request.
const maxCodeBatch = 500

// ChargeCodeHandler manages charge code inventory.
type ChargeCodeHandler struct {
	db *gorm.DB
}

// NewChargeCodeHandler constructs a ChargeCodeHandler.
func NewChargeCodeHandler(db *gorm.DB) *ChargeCodeHandler {
	return &ChargeCodeHandler{db: db}
}

// generateCodesRequest defines the batch generation body.
type generateCodesRequest struct {
	PackageID uint64 `json:"package_id"`
	Count     int    `json:"count"`
}

// Generate creates a batch of fresh charge codes for one package. Code
// collisions against the unique index are retried with new values.
func (h *ChargeCodeHandler) Generate(c *gin.Context) {
	var body generateCodesRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Count <= 0 || body.Count > maxCodeBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 500"})
		return
	}

	var pkg models.SubscriptionPackage
	if errFind := h.db.WithContext(c.Request.Context()).
		First(&pkg, body.PackageID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query package failed"})
		return
	}

	codes := make([]string, 0, body.Count)
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < body.Count; i++ {
			var created bool
			for attempt := 0; attempt < 5 && !created; attempt++ {
				row := models.ChargeCode{
					Code:      security.GenerateChargeCode(),
					PackageID: pkg.ID,
				}
				errCreate := tx.Create(&row).Error
				if errCreate == nil {
					codes = append(codes, row.Code)
					created = true
					continue
				}
				if !dbpkg.IsUniqueViolation(errCreate) {
					return errCreate
				}
			}
			if !created {
				return errors.New("code generation exhausted retries")
			}
		}
		return nil
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate codes failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"package":    pkg.Name,
		"coin_value": pkg.CoinValue,
		"codes":      codes,
	})
}

// chargeCodeDTO defines the charge code response payload.
type chargeCodeDTO struct {
	ID          uint64     `json:"id"`
	Code        string     `json:"code"`
	PackageID   uint64     `json:"package_id"`
	PackageName string     `json:"package_name"`
	CoinValue   int64      `json:"package_coins"`
	IsUsed      bool       `json:"is_used"`
	ActivatedBy *string    `json:"activated_by_serial,omitempty"`
	ActivatedAt *time.Time `json:"activation_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// List returns charge codes, optionally filtered by used state.
func (h *ChargeCodeHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Preload("Package").
		Preload("ActivatedBy").
		Order("created_at DESC").
		Limit(200)
	switch c.Query("used") {
	case "true":
		query = query.Where("is_used = ?", true)
	case "false":
		query = query.Where("is_used = ?", false)
	}

	var rows []models.ChargeCode
	if errList := query.Find(&rows).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query codes failed"})
		return
	}

	resp := make([]chargeCodeDTO, 0, len(rows))
	for _, row := range rows {
		dto := chargeCodeDTO{
			ID:          row.ID,
			Code:        row.Code,
			PackageID:   row.PackageID,
			PackageName: row.Package.Name,
			CoinValue:   row.Package.CoinValue,
			IsUsed:      row.IsUsed,
			ActivatedAt: row.ActivatedAt,
			CreatedAt:   row.CreatedAt,
		}
		if row.ActivatedBy != nil {
			dto.ActivatedBy = &row.ActivatedBy.Serial
		}
		resp = append(resp, dto)
	}
	c.JSON(http.StatusOK, gin.H{"codes": resp})
}
