package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/activation"
	"github.com/ectroshop9/coinshop/internal/config"
	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/ledger"
	"github.com/ectroshop9/coinshop/internal/links"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/recharge"
)

// fakeLinks satisfies LinkProvider without a worker round trip.
type fakeLinks struct {
	calls int
	err   error
}

func (f *fakeLinks) CreateProtectedLink(_ context.Context, fileURL string, _ map[string]any) (*links.Link, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	token := fmt.Sprintf("token-%d", f.calls)
	return &links.Link{
		Token:     token,
		URL:       "https://dl.example.com/d/" + token,
		ExpiresAt: time.Now().UTC().Add(2 * time.Hour),
	}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func seedCustomer(t *testing.T, conn *gorm.DB, serial string, balance int64) *models.Customer {
	t.Helper()
	customer := models.Customer{Serial: serial, PIN: "1234", IsActive: true}
	if errCreate := conn.Create(&customer).Error; errCreate != nil {
		t.Fatalf("create customer: %v", errCreate)
	}
	wallet := models.Wallet{CustomerID: customer.ID, Balance: balance, TotalDeposited: balance}
	if errCreate := conn.Create(&wallet).Error; errCreate != nil {
		t.Fatalf("create wallet: %v", errCreate)
	}
	return &customer
}

func seedFile(t *testing.T, conn *gorm.DB, title string, price int64) *models.TechnicalFile {
	t.Helper()
	category := models.Category{Name: "Category for " + title}
	if errCreate := conn.Create(&category).Error; errCreate != nil {
		t.Fatalf("create category: %v", errCreate)
	}
	file := models.TechnicalFile{
		CategoryID:  category.ID,
		Title:       title,
		PriceCoins:  price,
		FileURL:     "https://files.example.com/" + title + ".pdf",
		IsAvailable: true,
	}
	if errCreate := conn.Create(&file).Error; errCreate != nil {
		t.Fatalf("create file: %v", errCreate)
	}
	return &file
}

func TestPurchaseDebitsAndRecords(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	customer := seedCustomer(t, conn, "SERIALSALES0001", 600)
	file := seedFile(t, conn, "wiring-diagram", 120)

	result, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}
	if result.PaidPrice != 120 || result.NewBalance != 480 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var purchase models.Purchase
	if errFind := conn.Where("customer_id = ? AND file_id = ?", customer.ID, file.ID).
		First(&purchase).Error; errFind != nil {
		t.Fatalf("load purchase: %v", errFind)
	}
	if purchase.PaidPrice != 120 || purchase.MaxDownloads != models.DefaultMaxDownloads || purchase.DownloadsCount != 0 {
		t.Fatalf("unexpected purchase row: %+v", purchase)
	}

	var txRow models.Transaction
	if errFind := conn.Where("customer_id = ? AND type = ?", customer.ID, models.TransactionPurchase).
		First(&txRow).Error; errFind != nil {
		t.Fatalf("load transaction: %v", errFind)
	}
	if txRow.Amount != -120 {
		t.Fatalf("purchase debit must be recorded as -120, got %d", txRow.Amount)
	}
}

func TestPurchaseSnapshotsPrice(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	customer := seedCustomer(t, conn, "SERIALSALES0002", 600)
	file := seedFile(t, conn, "snapshot-price", 120)

	if _, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID); errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}
	if errUpdate := conn.Model(file).Update("price_coins", 999).Error; errUpdate != nil {
		t.Fatalf("reprice file: %v", errUpdate)
	}

	var purchase models.Purchase
	if errFind := conn.Where("customer_id = ? AND file_id = ?", customer.ID, file.ID).
		First(&purchase).Error; errFind != nil {
		t.Fatalf("load purchase: %v", errFind)
	}
	if purchase.PaidPrice != 120 {
		t.Fatalf("paid price must stay 120 after repricing, got %d", purchase.PaidPrice)
	}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	customer := seedCustomer(t, conn, "SERIALSALES0003", 50)
	file := seedFile(t, conn, "too-expensive", 120)

	_, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID)
	if !errors.Is(errPurchase, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", errPurchase)
	}

	var count int64
	if errCount := conn.Model(&models.Purchase{}).Where("customer_id = ?", customer.ID).Count(&count).Error; errCount != nil {
		t.Fatalf("count purchases: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("failed purchase left %d rows", count)
	}
	var wallet models.Wallet
	if errFind := conn.Where("customer_id = ?", customer.ID).First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.Balance != 50 || wallet.TotalSpent != 0 {
		t.Fatalf("failed purchase touched the wallet: %+v", wallet)
	}
}

func TestPurchaseDuplicateRejected(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	customer := seedCustomer(t, conn, "SERIALSALES0004", 600)
	file := seedFile(t, conn, "buy-once", 120)

	if _, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID); errPurchase != nil {
		t.Fatalf("first purchase: %v", errPurchase)
	}
	_, errAgain := svc.Purchase(context.Background(), customer.ID, file.ID)
	if !errors.Is(errAgain, ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", errAgain)
	}

	var wallet models.Wallet
	if errFind := conn.Where("customer_id = ?", customer.ID).First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.Balance != 480 {
		t.Fatalf("duplicate purchase changed the balance: %+v", wallet)
	}
}

func TestPurchaseUnavailableFile(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	customer := seedCustomer(t, conn, "SERIALSALES0005", 600)
	file := seedFile(t, conn, "pulled-from-catalog", 120)
	if errUpdate := conn.Model(file).Update("is_available", false).Error; errUpdate != nil {
		t.Fatalf("hide file: %v", errUpdate)
	}

	_, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID)
	if !errors.Is(errPurchase, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for hidden file, got %v", errPurchase)
	}
}

func TestRequestDownloadConsumesQuota(t *testing.T) {
	conn := newTestDB(t)
	provider := &fakeLinks{}
	svc := NewService(conn, provider)
	customer := seedCustomer(t, conn, "SERIALSALES0006", 600)
	file := seedFile(t, conn, "three-downloads", 120)

	purchase, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}

	for i := 0; i < models.DefaultMaxDownloads; i++ {
		result, errDownload := svc.RequestDownload(context.Background(), customer.ID, purchase.PurchaseID)
		if errDownload != nil {
			t.Fatalf("download %d: %v", i+1, errDownload)
		}
		wantRemaining := models.DefaultMaxDownloads - i - 1
		if result.RemainingDownloads != wantRemaining {
			t.Fatalf("download %d: expected %d remaining, got %d", i+1, wantRemaining, result.RemainingDownloads)
		}
		if result.URL == "" || result.ExpiresAt.IsZero() {
			t.Fatalf("download %d: incomplete result %+v", i+1, result)
		}
	}

	_, errExhausted := svc.RequestDownload(context.Background(), customer.ID, purchase.PurchaseID)
	if !errors.Is(errExhausted, ErrDownloadsExhausted) {
		t.Fatalf("expected ErrDownloadsExhausted, got %v", errExhausted)
	}

	var row models.Purchase
	if errFind := conn.First(&row, purchase.PurchaseID).Error; errFind != nil {
		t.Fatalf("reload purchase: %v", errFind)
	}
	if row.DownloadsCount != models.DefaultMaxDownloads {
		t.Fatalf("counter must stop at the cap, got %d", row.DownloadsCount)
	}
	if row.LastDownloadAt == nil {
		t.Fatal("last_download_at must be set after downloads")
	}

	var linkRows int64
	if errCount := conn.Model(&models.DownloadLink{}).Where("purchase_id = ?", purchase.PurchaseID).Count(&linkRows).Error; errCount != nil {
		t.Fatalf("count download links: %v", errCount)
	}
	if linkRows != models.DefaultMaxDownloads {
		t.Fatalf("expected %d link records, got %d", models.DefaultMaxDownloads, linkRows)
	}
}

func TestRequestDownloadProviderFailureKeepsQuota(t *testing.T) {
	conn := newTestDB(t)
	provider := &fakeLinks{err: links.ErrUnavailable}
	svc := NewService(conn, provider)
	customer := seedCustomer(t, conn, "SERIALSALES0007", 600)
	file := seedFile(t, conn, "worker-down", 120)

	purchase, errPurchase := svc.Purchase(context.Background(), customer.ID, file.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}

	_, errDownload := svc.RequestDownload(context.Background(), customer.ID, purchase.PurchaseID)
	if !errors.Is(errDownload, links.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", errDownload)
	}

	var row models.Purchase
	if errFind := conn.First(&row, purchase.PurchaseID).Error; errFind != nil {
		t.Fatalf("reload purchase: %v", errFind)
	}
	if row.DownloadsCount != 0 {
		t.Fatalf("failed provider call consumed quota: %d", row.DownloadsCount)
	}
}

func TestRequestDownloadForeignPurchase(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn, &fakeLinks{})
	owner := seedCustomer(t, conn, "SERIALSALES0008", 600)
	intruder := seedCustomer(t, conn, "SERIALSALES0009", 600)
	file := seedFile(t, conn, "not-yours", 120)

	purchase, errPurchase := svc.Purchase(context.Background(), owner.ID, file.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}

	_, errDownload := svc.RequestDownload(context.Background(), intruder.ID, purchase.PurchaseID)
	if !errors.Is(errDownload, ErrPurchaseNotFound) {
		t.Fatalf("expected ErrPurchaseNotFound for another customer's purchase, got %v", errDownload)
	}
}

// TestCustomerJourney walks the full lifecycle: temporary account, final
// activation with the bonus, a code recharge, a purchase and the download
// cap.
func TestCustomerJourney(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	activationSvc := activation.NewService(conn, config.JWTConfig{
		Secret:        "journey-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	rechargeSvc := recharge.NewService(conn)
	salesSvc := NewService(conn, &fakeLinks{})

	account, errCreate := activationSvc.CreateTemporary(ctx)
	if errCreate != nil {
		t.Fatalf("create temporary: %v", errCreate)
	}
	if _, errFinalize := activationSvc.Finalize(ctx, account.CustomerID, "Journey Tester", "09121112233"); errFinalize != nil {
		t.Fatalf("finalize: %v", errFinalize)
	}

	pkg := models.SubscriptionPackage{Name: "Journey Pack", CoinValue: 500, Price: 5000}
	if errSeed := conn.Create(&pkg).Error; errSeed != nil {
		t.Fatalf("create package: %v", errSeed)
	}
	if errSeed := conn.Create(&models.ChargeCode{Code: "JOURNEY0CODE", PackageID: pkg.ID}).Error; errSeed != nil {
		t.Fatalf("create code: %v", errSeed)
	}
	redeemed, errRedeem := rechargeSvc.Redeem(ctx, account.CustomerID, "JOURNEY0CODE")
	if errRedeem != nil {
		t.Fatalf("redeem: %v", errRedeem)
	}
	if redeemed.NewBalance != activation.InitialBonus+500 {
		t.Fatalf("expected balance %d after recharge, got %d", activation.InitialBonus+500, redeemed.NewBalance)
	}

	file := seedFile(t, conn, "journey-manual", 120)
	purchase, errPurchase := salesSvc.Purchase(ctx, account.CustomerID, file.ID)
	if errPurchase != nil {
		t.Fatalf("purchase: %v", errPurchase)
	}
	if purchase.NewBalance != activation.InitialBonus+500-120 {
		t.Fatalf("expected balance %d after purchase, got %d", activation.InitialBonus+500-120, purchase.NewBalance)
	}

	for i := 0; i < models.DefaultMaxDownloads; i++ {
		if _, errDownload := salesSvc.RequestDownload(ctx, account.CustomerID, purchase.PurchaseID); errDownload != nil {
			t.Fatalf("download %d: %v", i+1, errDownload)
		}
	}
	if _, errDownload := salesSvc.RequestDownload(ctx, account.CustomerID, purchase.PurchaseID); !errors.Is(errDownload, ErrDownloadsExhausted) {
		t.Fatalf("expected ErrDownloadsExhausted after the cap, got %v", errDownload)
	}

	var wallet models.Wallet
	if errFind := conn.Where("customer_id = ?", account.CustomerID).First(&wallet).Error; errFind != nil {
		t.Fatalf("load wallet: %v", errFind)
	}
	if wallet.Balance != wallet.TotalDeposited-wallet.TotalSpent {
		t.Fatalf("ledger invariant broken: %+v", wallet)
	}
}
