package models

import "time"

// Notification is an in-app message for a customer. Notifications are
// written outside money-moving transactions; a failed write never rolls
// back the financial operation that produced it.
type Notification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index"`        // Target customer.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Target customer record.

	Title   string `gorm:"type:varchar(150);not null"` // Short headline.
	Message string `gorm:"type:text;not null"`         // Body text.

	IsRead bool `gorm:"not null;default:false"` // Whether the customer opened it.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
