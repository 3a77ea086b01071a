package security

import (
	"crypto/rand"
	"math/big"
)

// Character sets for generated identifiers.
const (
	serialChars     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	chargeCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digitChars      = "0123456789"
)

// Generated identifier lengths.
const (
	// SerialLength is the customer serial key length.
	SerialLength = 15
	// PINLength is the recovery PIN length.
	PINLength = 4
	// ChargeCodeLength is the voucher string length.
	ChargeCodeLength = 12
)

// GenerateSerial returns a random 15-character alphanumeric serial key.
func GenerateSerial() string {
	return randomString(serialChars, SerialLength)
}

// GeneratePIN returns a random 4-digit recovery PIN.
func GeneratePIN() string {
	return randomString(digitChars, PINLength)
}

// GenerateChargeCode returns a random 12-character uppercase voucher string.
func GenerateChargeCode() string {
	return randomString(chargeCodeChars, ChargeCodeLength)
}

// randomString draws length characters from charset using crypto/rand.
// Uniqueness is not guaranteed here; callers insert under a unique index
// and retry on collision.
func randomString(charset string, length int) string {
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken.
			panic(err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out)
}
