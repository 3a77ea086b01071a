package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/ledger"
	"github.com/ectroshop9/coinshop/internal/links"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/sales"
)

// PurchaseHandler handles purchase and download endpoints.
type PurchaseHandler struct {
	db    *gorm.DB
	sales *sales.Service
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(db *gorm.DB, salesSvc *sales.Service) *PurchaseHandler {
	return &PurchaseHandler{db: db, sales: salesSvc}
}

// purchaseRequest defines the body for buying a file.
type purchaseRequest struct {
	FileID uint64 `json:"file_id"`
}

// Purchase buys a file for the authenticated customer.
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body purchaseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.FileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
		return
	}

	result, errPurchase := h.sales.Purchase(c.Request.Context(), customerID, body.FileID)
	if errPurchase != nil {
		switch {
		case errors.Is(errPurchase, sales.ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found or unavailable"})
		case errors.Is(errPurchase, ledger.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		case errors.Is(errPurchase, sales.ErrAlreadyPurchased):
			c.JSON(http.StatusConflict, gin.H{"error": "file already purchased"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"purchase_id":  result.PurchaseID,
		"file_title":   result.FileTitle,
		"file_price":   result.PaidPrice,
		"new_balance":  result.NewBalance,
		"purchased_at": result.PurchasedAt,
		"message":      "go to your purchases to download the file",
	})
}

// purchaseDTO defines the purchase list response payload.
type purchaseDTO struct {
	ID             uint64    `json:"id"`
	FileID         uint64    `json:"file_id"`
	FileTitle      string    `json:"file_title"`
	PaidPrice      int64     `json:"paid_price"`
	PurchasedAt    time.Time `json:"timestamp"`
	DownloadsCount int       `json:"downloads_count"`
	DownloadsLeft  int       `json:"downloads_left"`
	CanDownload    bool      `json:"can_download"`
}

// List returns the authenticated customer's purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var purchases []models.Purchase
	if errList := h.db.WithContext(c.Request.Context()).
		Preload("File").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&purchases).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query purchases failed"})
		return
	}

	resp := make([]purchaseDTO, 0, len(purchases))
	for _, row := range purchases {
		dto := purchaseDTO{
			ID:             row.ID,
			FileID:         row.FileID,
			PaidPrice:      row.PaidPrice,
			PurchasedAt:    row.CreatedAt,
			DownloadsCount: row.DownloadsCount,
			DownloadsLeft:  row.RemainingDownloads(),
			CanDownload:    row.CanDownload(),
		}
		if row.File != nil {
			dto.FileTitle = row.File.Title
		}
		resp = append(resp, dto)
	}
	c.JSON(http.StatusOK, gin.H{"purchases": resp})
}

// Download mints a protected download link for one purchase.
func (h *PurchaseHandler) Download(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	purchaseID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	result, errDownload := h.sales.RequestDownload(c.Request.Context(), customerID, purchaseID)
	if errDownload != nil {
		switch {
		case errors.Is(errDownload, sales.ErrPurchaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
		case errors.Is(errDownload, sales.ErrDownloadsExhausted):
			c.JSON(http.StatusConflict, gin.H{"error": "downloads exhausted", "remaining": 0})
		case errors.Is(errDownload, links.ErrDisabled), errors.Is(errDownload, links.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "download service unavailable, try again later"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"download_url":        result.URL,
		"expires_at":          result.ExpiresAt,
		"remaining_downloads": result.RemainingDownloads,
	})
}
