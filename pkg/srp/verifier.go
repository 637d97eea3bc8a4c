package srp

import (
	"fmt"
	"io"
	"math/big"
)

// ComputeVerifier computes the SRP-6a verifier value: v = g^x % N
// where x = H(salt | identity | password).
func ComputeVerifier(password string, salt []byte) *big.Int {
	x := privateKey(salt, password)
	return new(big.Int).Exp(G, x, N)
}

// GenerateSalt draws a random SaltSize-byte salt from r.
func GenerateSalt(r io.Reader) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("failed to generate random salt: %w", err)
	}
	return salt, nil
}

// PadVerifier returns v as a fixed-length big-endian byte string for storage.
func PadVerifier(v *big.Int) []byte {
	return pad(v)
}
