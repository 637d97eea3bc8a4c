// Package srp provides the SRP-6a (Secure Remote Password) exchange used to unlock radio devices.
// The group, hash and identity are fixed: RFC 5054 1024-bit group, SHA-256, identity "radio".
package srp

import (
	"crypto/sha256"
	"math/big"
)

// Identity is the fixed SRP user name shared by every radio device.
const Identity = "radio"

// Wire sizes of the exchanged values.
const (
	// KeyLength is the byte length of N; A, B and S are padded to this length.
	KeyLength = 128
	// SaltSize is the length of the device salt.
	SaltSize = 4
	// ProofSize is the length of M1, M2 and the session key (SHA-256 output).
	ProofSize = sha256.Size
	// ephemeralSize is the number of random bytes drawn for a and b (256 bits).
	ephemeralSize = 32
)

// RFC 5054 1024-bit SRP Group Parameters
// These MUST match the device parameters exactly.
var (
	// N is the 1024-bit safe prime from RFC 5054 Appendix A
	N = initN()

	// G is the generator (always 2 for this group)
	G = big.NewInt(2)

	// K is the multiplier: k = H(N | PAD(g))
	K = computeK(N, G)
)

// initN initializes the N parameter (must match device exactly)
func initN() *big.Int {
	n := new(big.Int)
	n.SetString(
		"EEAF0AB9ADB38DD69C33F80AFA8FC5E86072618775FF3C0B9EA2314C9C256576"+
			"D674DF7496EA81D3383B4813D692C6E0E0D5D8E250B98BE48E495C1D6089DAD1"+
			"5DC7D7B46154D6B6CE8EF4AD69B15D4982559B297BCF1885C529F566660E57EC"+
			"68EDBC3C05726CC02FD4CBF4976EAA9AFD5138FE8376435B9FC61D2FC0EB06E3", 16)
	return n
}

// computeK computes the SRP-6a multiplier k = H(N | PAD(g))
//
//nolint:gocritic // N is capitalized per RFC 5054 notation
func computeK(N, g *big.Int) *big.Int {
	return hashInt(N.Bytes(), pad(g))
}

// pad returns v as a big-endian byte string left-padded to the length of N.
// Every group element that enters a hash goes through pad; the device pads the same way.
func pad(v *big.Int) []byte {
	out := make([]byte, KeyLength)
	return v.FillBytes(out)
}

// hash returns H(parts[0] | parts[1] | ...).
func hash(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// hashInt returns H(parts...) interpreted as a big-endian integer.
func hashInt(parts ...[]byte) *big.Int {
	return new(big.Int).SetBytes(hash(parts...))
}

// privateKey derives x = H(salt | identity | password).
func privateKey(salt []byte, password string) *big.Int {
	return hashInt(salt, []byte(Identity), []byte(password))
}

// scrambler computes u = H(PAD(A) | PAD(B)).
//
//nolint:gocritic // A and B are capitalized per RFC 5054 notation
func scrambler(A, B *big.Int) *big.Int {
	return hashInt(pad(A), pad(B))
}

// clientProof computes M1 = H(PAD(A) | PAD(B) | K).
//
//nolint:gocritic // A and B are capitalized per RFC 5054 notation
func clientProof(A, B *big.Int, key []byte) []byte {
	return hash(pad(A), pad(B), key)
}

// serverProof computes M2 = H(PAD(A) | M1 | K).
//
//nolint:gocritic // A and M1 are capitalized per RFC 5054 notation
func serverProof(A *big.Int, M1, key []byte) []byte {
	return hash(pad(A), M1, key)
}

// isZeroModN reports whether v ≡ 0 (mod N).
func isZeroModN(v *big.Int) bool {
	return new(big.Int).Mod(v, N).Sign() == 0
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
