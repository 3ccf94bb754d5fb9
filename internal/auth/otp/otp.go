package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DefaultCodeLength is the number of digits in a login code.
const DefaultCodeLength = 6

var ten = big.NewInt(10)

// GenerateNumericCode returns a code of length decimal digits drawn from
// crypto/rand. Each digit is sampled independently, so leading zeros are kept
// and every position is uniform. The code is a bearer secret for account
// access; a general-purpose PRNG must never be used here.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// GenerateUnguessableSecret returns a random hex string outside the numeric
// code alphabet. It backs the fallback challenge issued when no email
// attribute is available: the ceremony completes, but no client answer can
// ever match it.
func GenerateUnguessableSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
