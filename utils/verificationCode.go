package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// codePattern matches the public verification code format: 3 letters,
// 5 digits, 2 letters.
var codePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{5}[A-Z]{2}$`)

// GenerateVerificationCode produces a 10-character verification code in the
// format AAA#####AA. Each character is drawn independently and uniformly
// from its alphabet. Uniqueness is enforced by the database's unique
// constraint; the record store retries the insert on a collision.
func GenerateVerificationCode() string {
	var b strings.Builder
	b.Grow(10)
	for i := 0; i < 3; i++ {
		b.WriteByte(randomChar(codeLetters))
	}
	for i := 0; i < 5; i++ {
		b.WriteByte(randomChar(codeDigits))
	}
	for i := 0; i < 2; i++ {
		b.WriteByte(randomChar(codeLetters))
	}
	return b.String()
}

// NormalizeVerificationCode strips whitespace and uppercases a submitted code.
func NormalizeVerificationCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// IsValidCodeFormat reports whether a normalized code matches the
// verification code format.
func IsValidCodeFormat(code string) bool {
	return codePattern.MatchString(code)
}

func randomChar(alphabet string) byte {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		// crypto/rand failing means the platform RNG is broken; nothing
		// sensible to return.
		panic(err)
	}
	return alphabet[n.Int64()]
}
