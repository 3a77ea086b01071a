package models

import "time"

// TransactionType tags a ledger entry with its business origin.
type TransactionType string

// Transaction type constants.
const (
	// TransactionInitial is the one-time activation bonus credit.
	TransactionInitial TransactionType = "INITIAL"
	// TransactionCharge is a charge-code redemption credit.
	TransactionCharge TransactionType = "CHARGE"
	// TransactionPurchase is a file purchase debit.
	TransactionPurchase TransactionType = "PURCHASE"
)

// Transaction is an append-only ledger entry. Rows are never updated or
// deleted; the sum of a customer's amounts equals the wallet's
// total_deposited - total_spent.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index"`        // Owning customer.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Owning customer record.

	Amount      int64           `gorm:"not null"`                  // Signed amount, positive for credits.
	Type        TransactionType `gorm:"type:varchar(10);not null"` // Business origin tag.
	Description string          `gorm:"type:text"`                 // Free-text description.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
