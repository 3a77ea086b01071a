// Package notify stores in-app notifications for customers.
package notify

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
)

// Send records a notification for a customer. It is fire-and-forget: a
// storage failure is logged and swallowed so callers finishing a financial
// operation are never rolled back by it.
func Send(conn *gorm.DB, customerID uint64, title, message string) {
	row := models.Notification{
		CustomerID: customerID,
		Title:      title,
		Message:    message,
	}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		log.WithFields(log.Fields{
			"customer_id": customerID,
			"title":       title,
		}).Errorf("create notification failed: %v", errCreate)
	}
}
