package models

import "time"

// SubscriptionPackage maps a package name to the coin value granted by its
// charge codes and the monetary price it is sold for. Reference data,
// immutable once codes reference it.
type SubscriptionPackage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name      string  `gorm:"type:varchar(100);not null;uniqueIndex"` // Package display name.
	CoinValue int64   `gorm:"not null"`                               // Coins credited per redeemed code.
	Price     float64 `gorm:"type:decimal(10,2);not null;default:0"`  // Monetary price.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// ChargeCode is a single-use voucher redeemable for its package's coin
// value. Once is_used flips, the redeemer and redemption time are set
// exactly once, atomically with the wallet credit.
type ChargeCode struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code      string              `gorm:"type:varchar(12);not null;uniqueIndex"` // Unique voucher string.
	PackageID uint64              `gorm:"not null;index"`                        // Package defining coin value.
	Package   SubscriptionPackage `gorm:"foreignKey:PackageID"`                  // Package relation.

	IsUsed        bool       `gorm:"not null;default:false"`  // Whether the code was redeemed.
	ActivatedByID *uint64    `gorm:"index"`                   // Customer who redeemed the code.
	ActivatedBy   *Customer  `gorm:"foreignKey:ActivatedByID"` // Redeeming customer record.
	ActivatedAt   *time.Time // Redemption time, if redeemed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
