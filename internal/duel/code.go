package duel

import (
	"crypto/rand"
	"math/big"
)

const (
	CodeLength  = 6
	codeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateCode draws CodeLength characters uniformly from [a-z0-9].
// Collisions are not retried; creating over a taken code fails instead.
func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
