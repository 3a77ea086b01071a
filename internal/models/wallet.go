package models

import "time"

// Wallet holds a customer's coin balance. Exactly one wallet exists per
// customer and is created together with it.
//
// Balance, TotalDeposited and TotalSpent are only mutated through the
// ledger engine, which keeps balance == total_deposited - total_spent.
// An admin manual adjustment is the single documented exception.
type Wallet struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;uniqueIndex"`      // Owning customer.
	Customer   *Customer `gorm:"foreignKey:CustomerID"`     // Owning customer record.

	Balance        int64 `gorm:"not null;default:0"` // Current coin balance.
	TotalDeposited int64 `gorm:"not null;default:0"` // Lifetime credited coins.
	TotalSpent     int64 `gorm:"not null;default:0"` // Lifetime debited coins.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
