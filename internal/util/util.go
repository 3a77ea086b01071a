package util

// MaskSecret obscures a secret value for logging purposes, showing only the
// first and last few characters. Used for serials and charge codes, which
// must never appear verbatim in logs.
func MaskSecret(secret string) string {
	if len(secret) > 8 {
		return secret[:4] + "..." + secret[len(secret)-4:]
	} else if len(secret) > 4 {
		return secret[:2] + "..." + secret[len(secret)-2:]
	} else if len(secret) > 2 {
		return secret[:1] + "..." + secret[len(secret)-1:]
	}
	return secret
}
