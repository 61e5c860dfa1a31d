package domain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// passwordAlphabet is the fixed mixed alphanumeric-plus-symbol set temporary
// credentials are drawn from.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*()_-+="

// TempPasswordLength is the default length of a generated temporary password.
const TempPasswordLength = 24

// TempPassword generates a random one-time credential of n characters from a
// CSPRNG. The modulo draw carries a slight bias against the alphabet length;
// acceptable for passwords expected to be rotated on first login.
func TempPassword(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	raw := make([]byte, 4*n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v := binary.BigEndian.Uint32(raw[4*i:])
		out[i] = passwordAlphabet[v%uint32(len(passwordAlphabet))]
	}
	return string(out), nil
}
