package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/recharge"
)

// WalletHandler handles wallet status and recharge endpoints.
type WalletHandler struct {
	db       *gorm.DB
	recharge *recharge.Service
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(db *gorm.DB, rechargeSvc *recharge.Service) *WalletHandler {
	return &WalletHandler{db: db, recharge: rechargeSvc}
}

// transactionDTO defines a ledger entry response payload.
type transactionDTO struct {
	Amount      int64     `json:"amount"`
	Type        string    `json:"transaction_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Status returns the wallet balance, counters and the last 10 transactions.
func (h *WalletHandler) Status(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var wallet models.Wallet
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID).
		First(&wallet).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query wallet failed"})
		return
	}

	var transactions []models.Transaction
	if errList := h.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(10).
		Find(&transactions).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query transactions failed"})
		return
	}

	recent := make([]transactionDTO, 0, len(transactions))
	for _, row := range transactions {
		recent = append(recent, transactionDTO{
			Amount:      row.Amount,
			Type:        string(row.Type),
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":             wallet.Balance,
		"total_deposited":     wallet.TotalDeposited,
		"total_spent":         wallet.TotalSpent,
		"recent_transactions": recent,
	})
}

// rechargeRequest defines the body for code redemption.
type rechargeRequest struct {
	ChargeCode string `json:"charge_code"`
}

// Recharge redeems a charge code for the authenticated customer.
func (h *WalletHandler) Recharge(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body rechargeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	code := strings.TrimSpace(body.ChargeCode)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "charge_code is required"})
		return
	}

	result, errRedeem := h.recharge.Redeem(c.Request.Context(), customerID, code)
	if errRedeem != nil {
		switch {
		case errors.Is(errRedeem, recharge.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid charge code"})
		case errors.Is(errRedeem, recharge.ErrCodeUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "charge code already used"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "recharge failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_balance":      result.NewBalance,
		"recharged_amount": result.Amount,
		"message":          "wallet recharged",
	})
}
