package models

import "time"

// DefaultMaxDownloads is the download cap granted with each purchase.
const DefaultMaxDownloads = 3

// Purchase records one customer acquiring one file. At most one row exists
// per (customer, file) pair; PaidPrice snapshots the file price at purchase
// time and is unaffected by later catalog changes.
type Purchase struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;uniqueIndex:idx_purchase_customer_file"` // Buying customer.
	Customer   *Customer `gorm:"foreignKey:CustomerID"`                           // Buying customer record.

	FileID uint64         `gorm:"not null;uniqueIndex:idx_purchase_customer_file"` // Purchased file.
	File   *TechnicalFile `gorm:"foreignKey:FileID"`                               // Purchased file record.

	PaidPrice int64 `gorm:"not null"` // Coins paid at purchase time.

	DownloadsCount int        `gorm:"not null;default:0"` // Protected links minted so far.
	MaxDownloads   int        `gorm:"not null;default:3"` // Download cap.
	LastDownloadAt *time.Time // Most recent successful link creation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Purchase timestamp.
}

// CanDownload reports whether the purchase has download quota left.
func (p *Purchase) CanDownload() bool {
	return p.DownloadsCount < p.MaxDownloads
}

// RemainingDownloads returns the unused download quota.
func (p *Purchase) RemainingDownloads() int {
	if remaining := p.MaxDownloads - p.DownloadsCount; remaining > 0 {
		return remaining
	}
	return 0
}
