package srp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// Server represents the device-side state for one SRP-6a unlock attempt.
// It is used by the radio simulator and by tests that need a real counterpart.
type Server struct {
	Salt     []byte
	Verifier *big.Int
	rand     io.Reader

	b *big.Int // Server ephemeral private value
	B *big.Int // Server ephemeral public value
	A *big.Int // Client ephemeral public value (received with step 1)
	S *big.Int // Shared secret
	K []byte   // Session key

	verified bool
}

// NewServer creates a new SRP server instance with the provided salt and verifier.
func NewServer(salt []byte, verifier *big.Int) *Server {
	return &Server{
		Salt:     copyBytes(salt),
		Verifier: verifier,
		rand:     rand.Reader,
	}
}

// SetRandom sets the random source for testing purposes.
func (s *Server) SetRandom(r io.Reader) {
	s.rand = r
}

// Challenge handles the first round trip.
// The client sends A, the server generates b, computes B = k*v + g^b mod N and
// derives the session key. Returns PAD(B).
//
//nolint:gocritic // A is capitalized per RFC 5054 notation
func (s *Server) Challenge(A []byte) ([]byte, error) {
	if len(A) != KeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidClientEphemeral, len(A))
	}

	clientA := new(big.Int).SetBytes(A)

	// Validate A (must not be 0 mod N)
	if isZeroModN(clientA) {
		return nil, fmt.Errorf("%w: A mod N == 0", ErrInvalidClientEphemeral)
	}

	s.verified = false
	s.A = clientA

	// Generate server ephemeral private value b (256 bits of entropy)
	bBytes := make([]byte, ephemeralSize)
	if _, err := io.ReadFull(s.rand, bBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random b: %w", err)
	}
	s.b = new(big.Int).SetBytes(bBytes)
	zero(bBytes)

	// B = (k*v + g^b) % N
	kv := new(big.Int).Mul(K, s.Verifier)
	gb := new(big.Int).Exp(G, s.b, N)
	s.B = kv.Add(kv, gb)
	s.B.Mod(s.B, N)

	u := scrambler(s.A, s.B)
	if u.Sign() == 0 {
		return nil, ErrInvalidScrambler
	}

	// S = (A * v^u)^b % N
	avu := new(big.Int).Exp(s.Verifier, u, N)
	avu.Mul(s.A, avu)
	avu.Mod(avu, N)
	s.S = new(big.Int).Exp(avu, s.b, N)

	s.K = hash(pad(s.S))

	return pad(s.B), nil
}

// VerifyClient handles the second round trip.
// The client sends M1, the server validates it and returns M2 = H(PAD(A) | M1 | K).
//
//nolint:gocritic // M1 is capitalized per RFC 5054 notation
func (s *Server) VerifyClient(M1 []byte) ([]byte, error) {
	if s.A == nil || s.B == nil || s.K == nil {
		return nil, ErrNoChallenge
	}

	expectedM1 := clientProof(s.A, s.B, s.K)

	// Compare M1 using constant-time comparison
	if subtle.ConstantTimeCompare(M1, expectedM1) != 1 {
		return nil, ErrProofMismatch
	}

	s.verified = true
	return serverProof(s.A, M1, s.K), nil
}

// SessionKey returns the session key K once the client proof has been verified, nil otherwise.
func (s *Server) SessionKey() []byte {
	if !s.verified {
		return nil
	}
	return copyBytes(s.K)
}

// ClearSecrets clears sensitive values from memory.
func (s *Server) ClearSecrets() {
	if s.b != nil {
		s.b.SetInt64(0)
		s.b = nil
	}
	if s.S != nil {
		s.S.SetInt64(0)
		s.S = nil
	}
	zero(s.K)
	s.K = nil
	s.verified = false
}
