// Package ledger is the single choke point for wallet balance changes.
// Every credit and debit locks the wallet row, updates the monotonic
// counters and appends an immutable transaction row, all inside the
// caller's database transaction.
package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/models"
)

// Ledger errors.
var (
	// ErrInvalidAmount indicates a non-positive mutation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates the wallet balance does not cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWalletNotFound indicates no wallet exists for the customer.
	ErrWalletNotFound = errors.New("wallet not found")
)

// Credit adds amount coins to the customer's wallet and appends a positive
// transaction row. It must run inside a database transaction; on error the
// caller's rollback discards any partial state.
func Credit(tx *gorm.DB, customerID uint64, amount int64, txType models.TransactionType, description string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, errLock := lockWallet(tx, customerID)
	if errLock != nil {
		return nil, errLock
	}

	wallet.Balance += amount
	wallet.TotalDeposited += amount
	if errSave := tx.Model(wallet).Updates(map[string]any{
		"balance":         wallet.Balance,
		"total_deposited": wallet.TotalDeposited,
	}).Error; errSave != nil {
		return nil, fmt.Errorf("ledger: credit wallet %d: %w", wallet.ID, errSave)
	}

	if errAppend := appendTransaction(tx, customerID, amount, txType, description); errAppend != nil {
		return nil, errAppend
	}
	return wallet, nil
}

// Debit removes amount coins from the customer's wallet and appends a
// negative transaction row. The sufficient-funds check happens under the
// wallet row lock, so concurrent debits cannot jointly overdraw.
func Debit(tx *gorm.DB, customerID uint64, amount int64, txType models.TransactionType, description string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, errLock := lockWallet(tx, customerID)
	if errLock != nil {
		return nil, errLock
	}
	if wallet.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	wallet.Balance -= amount
	wallet.TotalSpent += amount
	if errSave := tx.Model(wallet).Updates(map[string]any{
		"balance":     wallet.Balance,
		"total_spent": wallet.TotalSpent,
	}).Error; errSave != nil {
		return nil, fmt.Errorf("ledger: debit wallet %d: %w", wallet.ID, errSave)
	}

	if errAppend := appendTransaction(tx, customerID, -amount, txType, description); errAppend != nil {
		return nil, errAppend
	}
	return wallet, nil
}

// lockWallet loads the customer's wallet under a row lock.
func lockWallet(tx *gorm.DB, customerID uint64) (*models.Wallet, error) {
	var wallet models.Wallet
	if errFind := dbpkg.LockForUpdate(tx).
		Where("customer_id = ?", customerID).
		First(&wallet).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("ledger: load wallet for customer %d: %w", customerID, errFind)
	}
	return &wallet, nil
}

// appendTransaction writes one immutable ledger row.
func appendTransaction(tx *gorm.DB, customerID uint64, amount int64, txType models.TransactionType, description string) error {
	row := models.Transaction{
		CustomerID:  customerID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}
	if errCreate := tx.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("ledger: append transaction: %w", errCreate)
	}
	return nil
}
