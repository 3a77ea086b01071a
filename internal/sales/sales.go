// Package sales handles file purchases and protected downloads.
package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/ledger"
	"github.com/ectroshop9/coinshop/internal/links"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/notify"
)

// Sales errors.
var (
	// ErrFileNotFound indicates the file does not exist or is unavailable.
	ErrFileNotFound = errors.New("file not found or unavailable")
	// ErrAlreadyPurchased indicates the customer already owns the file.
	ErrAlreadyPurchased = errors.New("file already purchased")
	// ErrPurchaseNotFound indicates no purchase matches for this customer.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrDownloadsExhausted indicates the download quota is used up.
	ErrDownloadsExhausted = errors.New("downloads exhausted")
)

// PurchaseResult reports a successful purchase.
type PurchaseResult struct {
	PurchaseID  uint64    `json:"purchase_id"`
	FileID      uint64    `json:"file_id"`
	FileTitle   string    `json:"file_title"`
	PaidPrice   int64     `json:"file_price"`
	NewBalance  int64     `json:"new_balance"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// DownloadResult reports a minted protected download link.
type DownloadResult struct {
	URL                string    `json:"download_url"`
	ExpiresAt          time.Time `json:"expires_at"`
	RemainingDownloads int       `json:"remaining_downloads"`
}

// LinkProvider mints protected download links. Satisfied by *links.Client.
type LinkProvider interface {
	CreateProtectedLink(ctx context.Context, fileURL string, metadata map[string]any) (*links.Link, error)
}

// Service sells files and issues download links.
type Service struct {
	conn  *gorm.DB
	links LinkProvider
}

// NewService constructs a Service.
func NewService(conn *gorm.DB, provider LinkProvider) *Service {
	return &Service{conn: conn, links: provider}
}

// Purchase debits the file price from the customer's wallet and records the
// purchase with a snapshotted price and the default download cap. Debit and
// purchase row are one atomic unit.
func (s *Service) Purchase(ctx context.Context, customerID, fileID uint64) (*PurchaseResult, error) {
	var result PurchaseResult

	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var file models.TechnicalFile
		if errFind := tx.Where("id = ? AND is_available = ?", fileID, true).
			First(&file).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrFileNotFound
			}
			return fmt.Errorf("sales: load file %d: %w", fileID, errFind)
		}

		var existing models.Purchase
		errDup := tx.Where("customer_id = ? AND file_id = ?", customerID, fileID).
			First(&existing).Error
		if errDup == nil {
			return ErrAlreadyPurchased
		}
		if !errors.Is(errDup, gorm.ErrRecordNotFound) {
			return fmt.Errorf("sales: check existing purchase: %w", errDup)
		}

		wallet, errDebit := ledger.Debit(tx, customerID, file.PriceCoins, models.TransactionPurchase,
			fmt.Sprintf("Purchase of file: %s", file.Title))
		if errDebit != nil {
			return errDebit
		}

		purchase := models.Purchase{
			CustomerID:   customerID,
			FileID:       file.ID,
			PaidPrice:    file.PriceCoins,
			MaxDownloads: models.DefaultMaxDownloads,
		}
		if errCreate := tx.Create(&purchase).Error; errCreate != nil {
			// The unique (customer, file) index closes the race the
			// pre-check above cannot see.
			if dbpkg.IsUniqueViolation(errCreate) {
				return ErrAlreadyPurchased
			}
			return fmt.Errorf("sales: create purchase: %w", errCreate)
		}

		result = PurchaseResult{
			PurchaseID:  purchase.ID,
			FileID:      file.ID,
			FileTitle:   file.Title,
			PaidPrice:   file.PriceCoins,
			NewBalance:  wallet.Balance,
			PurchasedAt: purchase.CreatedAt,
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	notify.Send(s.conn, customerID, "New file purchased",
		fmt.Sprintf("You purchased %q for %d coins.", result.FileTitle, result.PaidPrice))

	return &result, nil
}

// RequestDownload mints a protected link for a purchased file. The provider
// call happens before any counter change; a failed call consumes no quota.
// The increment re-checks the cap under the row lock so the counter never
// exceeds max_downloads.
func (s *Service) RequestDownload(ctx context.Context, customerID, purchaseID uint64) (*DownloadResult, error) {
	var purchase models.Purchase
	if errFind := s.conn.WithContext(ctx).
		Preload("File").
		Where("id = ? AND customer_id = ?", purchaseID, customerID).
		First(&purchase).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("sales: load purchase %d: %w", purchaseID, errFind)
	}
	if !purchase.CanDownload() {
		return nil, ErrDownloadsExhausted
	}
	if purchase.File == nil {
		return nil, fmt.Errorf("sales: purchase %d has no file", purchaseID)
	}

	metadata := map[string]any{
		"purchase_id": purchase.ID,
		"customer_id": customerID,
	}
	link, errLink := s.links.CreateProtectedLink(ctx, purchase.File.FileURL, metadata)
	if errLink != nil {
		return nil, errLink
	}

	var remaining int
	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Purchase
		if errLock := dbpkg.LockForUpdate(tx).
			Where("id = ?", purchase.ID).
			First(&locked).Error; errLock != nil {
			return fmt.Errorf("sales: relock purchase %d: %w", purchase.ID, errLock)
		}
		if !locked.CanDownload() {
			return ErrDownloadsExhausted
		}

		now := time.Now().UTC()
		if errUpdate := tx.Model(&locked).Updates(map[string]any{
			"downloads_count":  locked.DownloadsCount + 1,
			"last_download_at": now,
		}).Error; errUpdate != nil {
			return fmt.Errorf("sales: count download: %w", errUpdate)
		}
		remaining = locked.MaxDownloads - locked.DownloadsCount - 1

		metadataJSON, errMarshal := json.Marshal(metadata)
		if errMarshal != nil {
			return fmt.Errorf("sales: marshal link metadata: %w", errMarshal)
		}
		record := models.DownloadLink{
			PurchaseID: locked.ID,
			Token:      link.Token,
			URL:        link.URL,
			ExpiresAt:  link.ExpiresAt,
			Metadata:   metadataJSON,
		}
		if errCreate := tx.Create(&record).Error; errCreate != nil {
			return fmt.Errorf("sales: record download link: %w", errCreate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	return &DownloadResult{
		URL:                link.URL,
		ExpiresAt:          link.ExpiresAt,
		RemainingDownloads: remaining,
	}, nil
}
