package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
)

// NotificationHandler handles in-app notification endpoints.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// notificationDTO defines the notification response payload.
type notificationDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"timestamp"`
}

// List returns the customer's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.Notification
	if errList := h.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error; errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query notifications failed"})
		return
	}

	resp := make([]notificationDTO, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, notificationDTO{
			ID:        row.ID,
			Title:     row.Title,
			Message:   row.Message,
			IsRead:    row.IsRead,
			CreatedAt: row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": resp})
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	customerID := getCustomerID(c)
	if customerID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	notificationID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	var row models.Notification
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND customer_id = ?", notificationID, customerID).
		First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query notification failed"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&row).Update("is_read", true).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update notification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": row.ID, "is_read": true})
}
