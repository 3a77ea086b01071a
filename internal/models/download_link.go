package models

import (
	"time"

	"gorm.io/datatypes"
)

// DownloadLink is an audit row for every protected link minted by the
// link provider. The provider owns the token lifetime; this table only
// records what was issued and against which purchase.
type DownloadLink struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PurchaseID uint64    `gorm:"not null;index"`        // Purchase the link was minted for.
	Purchase   *Purchase `gorm:"foreignKey:PurchaseID"` // Purchase record.

	Token     string    `gorm:"type:text;not null;uniqueIndex"` // Provider token embedded in the URL.
	URL       string    `gorm:"type:varchar(500);not null"`     // Full download URL handed to the customer.
	ExpiresAt time.Time `gorm:"not null"`                       // Link expiry reported by the provider.

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Opaque metadata sent to the provider.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
