package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CustomerClaims defines JWT claims for customers. The serial and active
// flag are embedded so the middleware can reject inactive accounts without
// a lookup on every request.
type CustomerClaims struct {
	CustomerID uint64 `json:"customer_id"`
	Serial     string `json:"serial"`
	IsActive   bool   `json:"is_active"`
	Refresh    bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// AdminClaims defines JWT claims for administrators.
type AdminClaims struct {
	AdminID  uint64 `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateCustomerTokens signs an access/refresh token pair for a customer.
func GenerateCustomerTokens(secret string, customerID uint64, serial string, isActive bool, accessExpiry, refreshExpiry time.Duration) (TokenPair, error) {
	access, errAccess := signCustomerToken(secret, customerID, serial, isActive, false, accessExpiry)
	if errAccess != nil {
		return TokenPair{}, errAccess
	}
	refresh, errRefresh := signCustomerToken(secret, customerID, serial, isActive, true, refreshExpiry)
	if errRefresh != nil {
		return TokenPair{}, errRefresh
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func signCustomerToken(secret string, customerID uint64, serial string, isActive, refresh bool, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := CustomerClaims{
		CustomerID: customerID,
		Serial:     serial,
		IsActive:   isActive,
		Refresh:    refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseCustomerToken validates a customer JWT and returns its claims.
func ParseCustomerToken(secret string, tokenString string) (*CustomerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomerClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*CustomerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Admin tokens validate under the same secret but carry no customer id.
	if claims.CustomerID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateAdminToken signs an admin JWT with the configured expiry.
func GenerateAdminToken(secret string, adminID uint64, username string, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAdminToken validates an admin JWT and returns its claims.
func ParseAdminToken(secret string, tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Customer tokens validate under the same secret but carry no admin id.
	if claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
