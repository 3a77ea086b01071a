package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/notify"
)

// NotificationHandler sends notifications to customers.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// sendNotificationRequest defines the notification body. An empty
// customer_id broadcasts to every active customer.
type sendNotificationRequest struct {
	CustomerID uint64 `json:"customer_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}

// Send delivers a notification to one customer or broadcasts it.
func (h *NotificationHandler) Send(c *gin.Context) {
	var body sendNotificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	message := strings.TrimSpace(body.Message)
	if title == "" || message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
		return
	}

	if body.CustomerID != 0 {
		var customer models.Customer
		if errFind := h.db.WithContext(c.Request.Context()).
			First(&customer, body.CustomerID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query customer failed"})
			return
		}
		notify.Send(h.db, customer.ID, title, message)
		c.JSON(http.StatusCreated, gin.H{"delivered": 1})
		return
	}

	var ids []uint64
	if errList := h.db.WithContext(c.Request.Context()).
		Model(&models.Customer{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query customers failed"})
		return
	}
	for _, id := range ids {
		notify.Send(h.db, id, title, message)
	}

	log.WithFields(log.Fields{
		"recipients": len(ids),
		"title":      title,
	}).Info("broadcast notification sent")
	c.JSON(http.StatusCreated, gin.H{"delivered": len(ids)})
}
