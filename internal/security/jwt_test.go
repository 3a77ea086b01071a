package security

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "jwt-test-secret"

func TestCustomerTokenRoundTrip(t *testing.T) {
	pair, errGenerate := GenerateCustomerTokens(testSecret, 42, "SERIALJWT000001", true, time.Hour, 24*time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate tokens: %v", errGenerate)
	}

	claims, errParse := ParseCustomerToken(testSecret, pair.Access)
	if errParse != nil {
		t.Fatalf("parse access: %v", errParse)
	}
	if claims.CustomerID != 42 || claims.Serial != "SERIALJWT000001" || !claims.IsActive {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Refresh {
		t.Fatal("access token must not carry the refresh flag")
	}

	refresh, errParse := ParseCustomerToken(testSecret, pair.Refresh)
	if errParse != nil {
		t.Fatalf("parse refresh: %v", errParse)
	}
	if !refresh.Refresh {
		t.Fatal("refresh token must carry the refresh flag")
	}
}

func TestCustomerTokenWrongSecret(t *testing.T) {
	pair, errGenerate := GenerateCustomerTokens(testSecret, 1, "SERIALJWT000002", false, time.Hour, time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate tokens: %v", errGenerate)
	}
	if _, errParse := ParseCustomerToken("other-secret", pair.Access); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestCustomerTokenExpired(t *testing.T) {
	pair, errGenerate := GenerateCustomerTokens(testSecret, 1, "SERIALJWT000003", true, -time.Minute, -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate tokens: %v", errGenerate)
	}
	if _, errParse := ParseCustomerToken(testSecret, pair.Access); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestCustomerTokenGarbage(t *testing.T) {
	if _, errParse := ParseCustomerToken(testSecret, "not.a.token"); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, errGenerate := GenerateAdminToken(testSecret, 7, "admin", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate admin token: %v", errGenerate)
	}

	claims, errParse := ParseAdminToken(testSecret, token)
	if errParse != nil {
		t.Fatalf("parse admin token: %v", errParse)
	}
	if claims.AdminID != 7 || claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenKindsDoNotCross(t *testing.T) {
	adminToken, errGenerate := GenerateAdminToken(testSecret, 7, "admin", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate admin token: %v", errGenerate)
	}
	if _, errParse := ParseCustomerToken(testSecret, adminToken); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("admin token accepted as customer token: %v", errParse)
	}

	pair, errGenerate := GenerateCustomerTokens(testSecret, 42, "SERIALJWT000004", true, time.Hour, time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate customer tokens: %v", errGenerate)
	}
	if _, errParse := ParseAdminToken(testSecret, pair.Access); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("customer token accepted as admin token: %v", errParse)
	}
}

func TestAdminTokenExpired(t *testing.T) {
	token, errGenerate := GenerateAdminToken(testSecret, 7, "admin", -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate admin token: %v", errGenerate)
	}
	if _, errParse := ParseAdminToken(testSecret, token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}
