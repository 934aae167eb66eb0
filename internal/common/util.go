package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes from the system CSPRNG.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	// crypto/rand.Read never returns an error and crashes the program
	// irrecoverably if the CSPRNG fails.
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray overwrites b with zeros.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
