package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

// CustomerHandler exposes read-only customer administration.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// customerDTO defines the customer response payload. The PIN is never
// included in admin listings.
type customerDTO struct {
	ID        uint64    `json:"id"`
	Serial    string    `json:"serial"`
	Name      *string   `json:"name"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"is_active"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns customers, optionally filtered by serial or name search.
func (h *CustomerHandler) List(c *gin.Context) {
	conn := h.db.WithContext(c.Request.Context())
	query := conn.Model(&models.Customer{}).Order("id ASC").Limit(200)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbpkg.NormalizeLikePattern(conn, "%"+search+"%")
		query = query.Where(
			conn.Where(dbpkg.CaseInsensitiveLikeExpr(conn, "serial"), pattern).
				Or(dbpkg.CaseInsensitiveLikeExpr(conn, "name"), pattern),
		)
	}

	var customers []models.Customer
	if errList := query.Find(&customers).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query customers failed"})
		return
	}

	ids := make([]uint64, 0, len(customers))
	for _, row := range customers {
		ids = append(ids, row.ID)
	}
	balances := map[uint64]int64{}
	if len(ids) > 0 {
		var wallets []models.Wallet
		if errWallets := conn.Where("customer_id IN ?", ids).Find(&wallets).Error; errWallets != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query wallets failed"})
			return
		}
		for _, wallet := range wallets {
			balances[wallet.CustomerID] = wallet.Balance
		}
	}

	resp := make([]customerDTO, 0, len(customers))
	for _, row := range customers {
		resp = append(resp, customerDTO{
			ID:        row.ID,
			Serial:    row.Serial,
			Name:      row.Name,
			Phone:     row.Phone,
			IsActive:  row.IsActive,
			Balance:   balances[row.ID],
			CreatedAt: row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"customers": resp})
}
