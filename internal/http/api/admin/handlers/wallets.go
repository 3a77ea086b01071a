package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

// WalletHandler exposes the admin-only wallet escape hatch.
type WalletHandler struct {
	db *gorm.DB
}

// NewWalletHandler constructs a WalletHandler.
func NewWalletHandler(db *gorm.DB) *WalletHandler {
	return &WalletHandler{db: db}
}

// adjustRequest defines the manual adjustment body.
type adjustRequest struct {
	Balance int64  `json:"balance"`
	Reason  string `json:"reason"`
}

// Adjust sets a wallet balance out-of-band. This bypasses the ledger and
// breaks the deposited-spent equality on purpose; every use is logged with
// the acting admin and reason.
func (h *WalletHandler) Adjust(c *gin.Context) {
	customerID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}

	var body adjustRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Balance < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "balance must not be negative"})
		return
	}

	var previous int64
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		if errFind := dbpkg.LockForUpdate(tx).
			Where("customer_id = ?", customerID).
			First(&wallet).Error; errFind != nil {
			return errFind
		}
		previous = wallet.Balance
		return tx.Model(&wallet).Update("balance", body.Balance).Error
	})
	if errTx != nil {
		if errors.Is(errTx, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "adjust wallet failed"})
		return
	}

	log.WithFields(log.Fields{
		"customer_id": customerID,
		"admin":       c.GetString("adminUsername"),
		"previous":    previous,
		"balance":     body.Balance,
		"reason":      body.Reason,
	}).Warn("manual wallet adjustment")

	c.JSON(http.StatusOK, gin.H{
		"customer_id":      customerID,
		"previous_balance": previous,
		"balance":          body.Balance,
	})
}
