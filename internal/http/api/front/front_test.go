package front

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/activation"
	"github.com/ectroshop9/coinshop/internal/config"
	dbpkg "github.com/ectroshop9/coinshop/internal/db"
	"github.com/ectroshop9/coinshop/internal/links"
	"github.com/ectroshop9/coinshop/internal/models"
	"github.com/ectroshop9/coinshop/internal/recharge"
	"github.com/ectroshop9/coinshop/internal/sales"
)

var testJWT = config.JWTConfig{
	Secret:        "front-test-secret",
	AccessExpiry:  time.Hour,
	RefreshExpiry: 24 * time.Hour,
}

type stubLinks struct {
	calls int
}

func (s *stubLinks) CreateProtectedLink(_ context.Context, _ string, _ map[string]any) (*links.Link, error) {
	s.calls++
	token := fmt.Sprintf("stub-token-%d", s.calls)
	return &links.Link{
		Token:     token,
		URL:       "https://dl.example.com/d/" + token,
		ExpiresAt: time.Now().UTC().Add(2 * time.Hour),
	}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}

	r := gin.New()
	RegisterFrontRoutes(r, conn, testJWT,
		activation.NewService(conn, testJWT),
		recharge.NewService(conn),
		sales.NewService(conn, &stubLinks{}))
	return r, conn
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		if errDecode := json.Unmarshal(w.Body.Bytes(), &parsed); errDecode != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), errDecode)
		}
	}
	return w, parsed
}

func TestAccountLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w, created := doJSON(t, r, http.MethodPost, "/v0/front/accounts/temporary", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create temporary: status %d body %s", w.Code, w.Body.String())
	}
	serial, _ := created["serial"].(string)
	token, _ := created["access"].(string)
	if len(serial) != 15 || token == "" {
		t.Fatalf("unexpected create response: %v", created)
	}

	// Wallet access requires an activated account.
	w, _ = doJSON(t, r, http.MethodGet, "/v0/front/wallet", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("inactive wallet access: expected 403, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v0/front/accounts/activate", token,
		gin.H{"name": "HTTP Tester", "phone": "09125550001"})
	if w.Code != http.StatusOK {
		t.Fatalf("activate: status %d body %s", w.Code, w.Body.String())
	}

	// The pre-activation token still carries is_active=false; fetch a fresh
	// session through login.
	w, session := doJSON(t, r, http.MethodPost, "/v0/front/login", "", gin.H{"serial": serial})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	activeToken, _ := session["access"].(string)
	if activeToken == "" {
		t.Fatalf("login returned no access token: %v", session)
	}

	w, wallet := doJSON(t, r, http.MethodGet, "/v0/front/wallet", activeToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("wallet: status %d body %s", w.Code, w.Body.String())
	}
	if balance, _ := wallet["balance"].(float64); balance != float64(activation.InitialBonus) {
		t.Fatalf("expected bonus balance %d, got %v", activation.InitialBonus, wallet["balance"])
	}

	// Second activation attempt is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/v0/front/accounts/activate", activeToken,
		gin.H{"name": "HTTP Tester", "phone": "09125550001"})
	if w.Code != http.StatusConflict {
		t.Fatalf("second activate: expected 409, got %d", w.Code)
	}
}

func TestAuthRejectedOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodGet, "/v0/front/wallet", tc.token, nil)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRefreshTokenRejectedForAccess(t *testing.T) {
	r, _ := newTestRouter(t)

	w, created := doJSON(t, r, http.MethodPost, "/v0/front/accounts/temporary", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create temporary: status %d", w.Code)
	}
	refresh, _ := created["refresh"].(string)
	if refresh == "" {
		t.Fatalf("no refresh token in response: %v", created)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v0/front/accounts/activate", refresh,
		gin.H{"name": "Refresh Tester", "phone": "09125550002"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token on protected route: expected 401, got %d", w.Code)
	}
}

func TestPurchaseAndDownloadOverHTTP(t *testing.T) {
	r, conn := newTestRouter(t)

	// Activated customer with a recharged wallet.
	_, created := doJSON(t, r, http.MethodPost, "/v0/front/accounts/temporary", "", nil)
	token, _ := created["access"].(string)
	serial, _ := created["serial"].(string)
	if w, _ := doJSON(t, r, http.MethodPost, "/v0/front/accounts/activate", token,
		gin.H{"name": "Buyer", "phone": "09125550003"}); w.Code != http.StatusOK {
		t.Fatalf("activate: status %d", w.Code)
	}
	_, session := doJSON(t, r, http.MethodPost, "/v0/front/login", "", gin.H{"serial": serial})
	token, _ = session["access"].(string)

	pkg := models.SubscriptionPackage{Name: "HTTP Pack", CoinValue: 500, Price: 5000}
	if errSeed := conn.Create(&pkg).Error; errSeed != nil {
		t.Fatalf("create package: %v", errSeed)
	}
	if errSeed := conn.Create(&models.ChargeCode{Code: "HTTPTESTCODE", PackageID: pkg.ID}).Error; errSeed != nil {
		t.Fatalf("create code: %v", errSeed)
	}
	w, recharged := doJSON(t, r, http.MethodPost, "/v0/front/wallet/recharge", token,
		gin.H{"charge_code": "HTTPTESTCODE"})
	if w.Code != http.StatusOK {
		t.Fatalf("recharge: status %d body %s", w.Code, w.Body.String())
	}
	if balance, _ := recharged["new_balance"].(float64); balance != float64(activation.InitialBonus+500) {
		t.Fatalf("unexpected balance after recharge: %v", recharged)
	}

	category := models.Category{Name: "Manuals"}
	if errSeed := conn.Create(&category).Error; errSeed != nil {
		t.Fatalf("create category: %v", errSeed)
	}
	file := models.TechnicalFile{
		CategoryID:  category.ID,
		Title:       "Service Manual",
		PriceCoins:  120,
		FileURL:     "https://files.example.com/manual.pdf",
		IsAvailable: true,
	}
	if errSeed := conn.Create(&file).Error; errSeed != nil {
		t.Fatalf("create file: %v", errSeed)
	}

	w, bought := doJSON(t, r, http.MethodPost, "/v0/front/purchases", token, gin.H{"file_id": file.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("purchase: status %d body %s", w.Code, w.Body.String())
	}
	purchaseID, _ := bought["purchase_id"].(float64)
	if purchaseID == 0 {
		t.Fatalf("no purchase id in response: %v", bought)
	}

	// The catalog must not leak source URLs.
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v0/front/categories/%d/files", category.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog: status %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("files.example.com")) {
		t.Fatalf("catalog leaked source url: %s", w.Body.String())
	}

	downloadPath := fmt.Sprintf("/v0/front/purchases/%d/download", int(purchaseID))
	for i := 0; i < models.DefaultMaxDownloads; i++ {
		w, download := doJSON(t, r, http.MethodPost, downloadPath, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("download %d: status %d body %s", i+1, w.Code, w.Body.String())
		}
		if url, _ := download["download_url"].(string); url == "" {
			t.Fatalf("download %d returned no url: %v", i+1, download)
		}
	}
	w, _ = doJSON(t, r, http.MethodPost, downloadPath, token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("exhausted download: expected 409, got %d", w.Code)
	}
}
