package models

import "time"

// Category groups technical files for store browsing.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"` // Category name.
	Description string `gorm:"type:text"`                              // Optional description.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// TechnicalFile is a digital file sold for coins. The FileURL points at the
// storage backend and is never handed to customers directly; downloads go
// through the protected-link provider.
type TechnicalFile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CategoryID uint64   `gorm:"not null;index"`        // Owning category.
	Category   Category `gorm:"foreignKey:CategoryID"` // Owning category record.

	Title       string `gorm:"type:varchar(200);not null"` // Display title.
	Description string `gorm:"type:text"`                  // Display description.
	ImageURL    string `gorm:"type:varchar(500)"`          // Optional preview image URL.

	PriceCoins int64  `gorm:"not null"`                   // Price in coins.
	FileURL    string `gorm:"type:varchar(500);not null"` // Source URL in the storage backend.

	IsAvailable bool `gorm:"not null;default:true"` // Whether the file can be purchased.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
