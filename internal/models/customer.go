package models

import "time"

// Customer represents a store customer identified by a serial key.
//
// Customers are created in a temporary state with no name or phone and
// become active through final activation or reactivation. The serial and
// PIN are assigned at creation and never regenerated.
type Customer struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Serial string `gorm:"type:varchar(15);not null;uniqueIndex"` // Public 15-char serial key.
	PIN    string `gorm:"column:pin;type:varchar(4);not null"`   // 4-digit recovery PIN.

	Name  *string `gorm:"type:varchar(100)"`             // Display name, set at final activation.
	Phone *string `gorm:"type:varchar(15);uniqueIndex"`  // Phone number, globally unique once set.

	IsActive bool `gorm:"not null;default:false"` // Whether the account may authenticate.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp, anchors the grace window.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// HasName reports whether the customer completed final activation at least once.
func (c *Customer) HasName() bool {
	return c.Name != nil && *c.Name != ""
}
