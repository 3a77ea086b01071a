// Package recharge redeems single-use charge codes into wallet credits.
package recharge

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/ledger"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/notify"
	"github.com/ectroshop9/coinshop/internal/util"
)

// Redemption errors.
var (
	// ErrCodeNotFound indicates no charge code matches the given string.
	ErrCodeNotFound = errors.New("charge code not found")
	// ErrCodeUsed indicates the charge code was already redeemed.
	ErrCodeUsed = errors.New("charge code already used")
)

// Result reports a successful redemption.
type Result struct {
	Code       string `json:"code"`
	Amount     int64  `json:"recharged_amount"`
	NewBalance int64  `json:"new_balance"`
}

// Service redeems charge codes.
type Service struct {
	conn *gorm.DB
}

// NewService constructs a Service.
func NewService(conn *gorm.DB) *Service {
	return &Service{conn: conn}
}

// Redeem consumes a charge code for the customer and credits its package's
// coin value. The used check-and-set and the wallet credit run in one
// transaction, so a code submitted twice concurrently credits exactly once.
func (s *Service) Redeem(ctx context.Context, customerID uint64, code string) (*Result, error) {
	var result Result

	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chargeCode models.ChargeCode
		if errFind := dbpkg.LockForUpdate(tx).
			Where("code = ?", code).
			First(&chargeCode).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrCodeNotFound
			}
			return fmt.Errorf("recharge: load code: %w", errFind)
		}
		if chargeCode.IsUsed {
			return ErrCodeUsed
		}

		var pkg models.SubscriptionPackage
		if errPkg := tx.First(&pkg, chargeCode.PackageID).Error; errPkg != nil {
			return fmt.Errorf("recharge: load package %d: %w", chargeCode.PackageID, errPkg)
		}

		now := time.Now().UTC()
		if errMark := tx.Model(&chargeCode).Updates(map[string]any{
			"is_used":         true,
			"activated_by_id": customerID,
			"activated_at":    now,
		}).Error; errMark != nil {
			return fmt.Errorf("recharge: mark code used: %w", errMark)
		}

		wallet, errCredit := ledger.Credit(tx, customerID, pkg.CoinValue, models.TransactionCharge,
			fmt.Sprintf("Recharge with code %s", chargeCode.Code))
		if errCredit != nil {
			return errCredit
		}

		result = Result{
			Code:       chargeCode.Code,
			Amount:     pkg.CoinValue,
			NewBalance: wallet.Balance,
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	log.WithFields(log.Fields{
		"customer_id": customerID,
		"code":        util.MaskSecret(result.Code),
		"amount":      result.Amount,
	}).Info("charge code redeemed")

	notify.Send(s.conn, customerID, "Balance recharged",
		fmt.Sprintf("%d coins were added to your wallet. Current balance: %d.", result.Amount, result.NewBalance))

	return &result, nil
}
