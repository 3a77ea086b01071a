// Package activation governs the customer lifecycle: temporary creation,
// final activation inside the 48-hour grace window, reactivation once the
// window lapsed, serial recovery and login.
package activation

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/config"
	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/ledger"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/notify"
	"github.com/ectroshop9/coinshop/internal/security"
	"github.com/ectroshop9/coinshop/internal/util"
)

// Lifecycle constants.
const (
	// GracePeriod is how long after creation final activation stays open.
	GracePeriod = 48 * time.Hour
	// InitialBonus is the coin credit granted at final activation.
	InitialBonus = 100
	// serialRetries bounds generator retries on a serial collision.
	serialRetries = 5
)

// Activation errors.
var (
	// ErrInvalidCredentials indicates a serial/PIN or phone/PIN mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSerial indicates no customer matches the serial.
	ErrInvalidSerial = errors.New("invalid serial")
	// ErrInactive indicates the account has not completed activation.
	ErrInactive = errors.New("account inactive")
	// ErrAlreadyActive indicates the account does not need (re)activation.
	ErrAlreadyActive = errors.New("account already active")
	// ErrPhoneRegistered indicates the phone belongs to another customer.
	ErrPhoneRegistered = errors.New("phone already registered")
	// ErrGraceExpired indicates the 48-hour window passed; reactivate first.
	ErrGraceExpired = errors.New("grace period expired")
	// ErrGraceNotElapsed indicates reactivation before the window closed.
	ErrGraceNotElapsed = errors.New("grace period not elapsed")
	// ErrCustomerNotFound indicates the authenticated customer vanished.
	ErrCustomerNotFound = errors.New("customer not found")
)

// TemporaryAccount reports a freshly created temporary customer. The serial
// and PIN are shown exactly once, at creation.
type TemporaryAccount struct {
	CustomerID uint64             `json:"customer_id"`
	Serial     string             `json:"serial"`
	PIN        string             `json:"pin"`
	Tokens     security.TokenPair `json:"tokens"`
}

// Session reports an issued login or reactivation session.
type Session struct {
	Serial   string             `json:"serial"`
	Name     *string            `json:"name"`
	IsActive bool               `json:"is_active"`
	Tokens   security.TokenPair `json:"tokens"`
}

// Service drives the activation state machine.
type Service struct {
	conn   *gorm.DB
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(conn *gorm.DB, jwtCfg config.JWTConfig) *Service {
	return &Service{conn: conn, jwtCfg: jwtCfg, now: func() time.Time { return time.Now().UTC() }}
}

// CreateTemporary creates an inactive customer with a generated serial and
// PIN, its empty wallet, and a session so the customer can complete
// activation. Customer and wallet are one atomic unit; serial collisions
// retry with a fresh value.
func (s *Service) CreateTemporary(ctx context.Context) (*TemporaryAccount, error) {
	var customer models.Customer

	var lastErr error
	for attempt := 0; attempt < serialRetries; attempt++ {
		customer = models.Customer{
			Serial: security.GenerateSerial(),
			PIN:    security.GeneratePIN(),
		}
		lastErr = s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if errCreate := tx.Create(&customer).Error; errCreate != nil {
				return errCreate
			}
			wallet := models.Wallet{CustomerID: customer.ID}
			if errWallet := tx.Create(&wallet).Error; errWallet != nil {
				return errWallet
			}
			return nil
		})
		if lastErr == nil {
			break
		}
		if !dbpkg.IsUniqueViolation(lastErr) {
			return nil, fmt.Errorf("activation: create temporary customer: %w", lastErr)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("activation: serial generation exhausted retries: %w", lastErr)
	}

	tokens, errTokens := s.issueTokens(&customer)
	if errTokens != nil {
		return nil, errTokens
	}

	log.WithFields(log.Fields{
		"customer_id": customer.ID,
		"serial":      util.MaskSecret(customer.Serial),
	}).Info("temporary account created")

	return &TemporaryAccount{
		CustomerID: customer.ID,
		Serial:     customer.Serial,
		PIN:        customer.PIN,
		Tokens:     tokens,
	}, nil
}

// Finalize completes activation for an authenticated customer: sets name
// and phone, flips the account active and credits the initial bonus, all in
// one transaction. A customer that already finalized is rejected and no
// further bonus is credited.
func (s *Service) Finalize(ctx context.Context, customerID uint64, name, phone string) (*models.Customer, error) {
	var customer models.Customer

	errTx := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := dbpkg.LockForUpdate(tx).First(&customer, customerID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("activation: load customer %d: %w", customerID, errFind)
		}

		if customer.HasName() {
			return ErrAlreadyActive
		}

		var phoneOwner models.Customer
		errPhone := tx.Where("phone = ? AND id <> ?", phone, customerID).
			First(&phoneOwner).Error
		if errPhone == nil {
			return ErrPhoneRegistered
		}
		if !errors.Is(errPhone, gorm.ErrRecordNotFound) {
			return fmt.Errorf("activation: check phone: %w", errPhone)
		}

		if s.now().Sub(customer.CreatedAt) > GracePeriod {
			return ErrGraceExpired
		}

		if errUpdate := tx.Model(&customer).Updates(map[string]any{
			"name":      name,
			"phone":     phone,
			"is_active": true,
		}).Error; errUpdate != nil {
			if dbpkg.IsUniqueViolation(errUpdate) {
				return ErrPhoneRegistered
			}
			return fmt.Errorf("activation: activate customer %d: %w", customerID, errUpdate)
		}
		customer.Name = &name
		customer.Phone = &phone
		customer.IsActive = true

		if _, errCredit := ledger.Credit(tx, customerID, InitialBonus, models.TransactionInitial,
			"Initial activation bonus"); errCredit != nil {
			return errCredit
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	notify.Send(s.conn, customerID, "Account activated",
		fmt.Sprintf("Welcome! %d coins were credited to your wallet as an activation bonus.", InitialBonus))

	return &customer, nil
}

// Reactivate restores an inactive account once the grace window lapsed.
// It flips the account active and issues a fresh session; the initial
// bonus is not granted again.
func (s *Service) Reactivate(ctx context.Context, serial, pin string) (*Session, error) {
	var customer models.Customer
	if errFind := s.conn.WithContext(ctx).
		Where("serial = ? AND pin = ?", serial, pin).
		First(&customer).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("activation: load customer by serial: %w", errFind)
	}

	if customer.IsActive {
		return nil, ErrAlreadyActive
	}
	if s.now().Sub(customer.CreatedAt) < GracePeriod {
		return nil, ErrGraceNotElapsed
	}

	if errUpdate := s.conn.WithContext(ctx).Model(&customer).
		Update("is_active", true).Error; errUpdate != nil {
		return nil, fmt.Errorf("activation: reactivate customer %d: %w", customer.ID, errUpdate)
	}
	customer.IsActive = true

	tokens, errTokens := s.issueTokens(&customer)
	if errTokens != nil {
		return nil, errTokens
	}

	return &Session{
		Serial:   customer.Serial,
		Name:     customer.Name,
		IsActive: true,
		Tokens:   tokens,
	}, nil
}

// RecoverSerial returns the serial for an exact phone/PIN match. No state
// changes.
func (s *Service) RecoverSerial(ctx context.Context, phone, pin string) (string, error) {
	var customer models.Customer
	if errFind := s.conn.WithContext(ctx).
		Where("phone = ? AND pin = ?", phone, pin).
		First(&customer).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("activation: recover serial: %w", errFind)
	}
	return customer.Serial, nil
}

// Login issues a session for an active customer identified by serial.
func (s *Service) Login(ctx context.Context, serial string) (*Session, error) {
	var customer models.Customer
	if errFind := s.conn.WithContext(ctx).
		Where("serial = ?", serial).
		First(&customer).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSerial
		}
		return nil, fmt.Errorf("activation: load customer by serial: %w", errFind)
	}
	if !customer.IsActive {
		return nil, ErrInactive
	}

	tokens, errTokens := s.issueTokens(&customer)
	if errTokens != nil {
		return nil, errTokens
	}

	return &Session{
		Serial:   customer.Serial,
		Name:     customer.Name,
		IsActive: customer.IsActive,
		Tokens:   tokens,
	}, nil
}

// issueTokens signs an access/refresh pair embedding the customer's serial
// and active flag.
func (s *Service) issueTokens(customer *models.Customer) (security.TokenPair, error) {
	tokens, err := security.GenerateCustomerTokens(
		s.jwtCfg.Secret,
		customer.ID,
		customer.Serial,
		customer.IsActive,
		s.jwtCfg.AccessExpiry,
		s.jwtCfg.RefreshExpiry,
	)
	if err != nil {
		return security.TokenPair{}, fmt.Errorf("activation: sign tokens: %w", err)
	}
	return tokens, nil
}
