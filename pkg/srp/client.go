package srp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

// Client represents the client-side state for one SRP-6a unlock attempt.
// A Client is created per attempt and is not reused: a new attempt needs a new Client.
// Instances are NOT safe for concurrent use.
type Client struct {
	password string
	rand     io.Reader

	a  *big.Int // Client ephemeral private value
	A  *big.Int // Client ephemeral public value
	B  *big.Int // Server ephemeral public value
	S  *big.Int // Shared secret
	K  []byte   // Session key
	M1 []byte   // Client proof

	authenticated bool
}

// NewClient creates a new SRP client for the given device password.
func NewClient(password string) *Client {
	return &Client{
		password: password,
		rand:     rand.Reader,
	}
}

// SetRandom sets the random source for testing purposes.
func (c *Client) SetRandom(r io.Reader) {
	c.rand = r
}

// StartAuthentication generates the ephemeral private value a and returns
// A = g^a mod N, padded to KeyLength bytes.
// Every call draws a new a, so previously computed state is discarded.
func (c *Client) StartAuthentication() ([]byte, error) {
	c.reset()

	// Generate ephemeral private value a (256 bits of entropy)
	aBytes := make([]byte, ephemeralSize)
	for {
		if _, err := io.ReadFull(c.rand, aBytes); err != nil {
			return nil, fmt.Errorf("failed to generate random a: %w", err)
		}
		c.a = new(big.Int).SetBytes(aBytes)
		if c.a.Sign() != 0 {
			break
		}
	}
	zero(aBytes)

	// Compute A = g^a % N
	c.A = new(big.Int).Exp(G, c.a, N)

	return pad(c.A), nil
}

// ProcessChallenge consumes the device challenge (salt and B) and returns the client proof M1.
// Client formula: S = (B - k*g^x)^(a + u*x) mod N, K = H(PAD(S)), M1 = H(PAD(A) | PAD(B) | K)
//
//nolint:gocritic // B is capitalized per RFC 5054 notation
func (c *Client) ProcessChallenge(salt, B []byte) ([]byte, error) {
	if c.a == nil || c.A == nil {
		return nil, ErrNotStarted
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSalt, len(salt))
	}
	if len(B) != KeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidServerEphemeral, len(B))
	}

	serverB := new(big.Int).SetBytes(B)

	// Validate B (must not be 0 mod N)
	if isZeroModN(serverB) {
		return nil, fmt.Errorf("%w: B mod N == 0", ErrInvalidServerEphemeral)
	}

	// Compute u = H(PAD(A) | PAD(B)) - scrambling parameter
	u := scrambler(c.A, serverB)
	if u.Sign() == 0 {
		return nil, ErrInvalidScrambler
	}

	// Derive private key x = H(salt | identity | password)
	x := privateKey(salt, c.password)

	// Step 1: k*g^x mod N
	kgx := new(big.Int).Exp(G, x, N)
	kgx.Mul(K, kgx)
	kgx.Mod(kgx, N)

	// Step 2: B - k*g^x mod N
	base := new(big.Int).Sub(serverB, kgx)
	base.Mod(base, N)

	// Step 3: a + u*x
	exponent := new(big.Int).Mul(u, x)
	exponent.Add(exponent, c.a)

	// Step 4: (B - k*g^x)^(a + u*x) mod N
	c.B = serverB
	c.S = new(big.Int).Exp(base, exponent, N)

	c.K = hash(pad(c.S))
	c.M1 = clientProof(c.A, c.B, c.K)

	return copyBytes(c.M1), nil
}

// VerifySession checks the device proof M2 = H(PAD(A) | M1 | K).
// It never fails; callers inspect Authenticated afterwards.
//
//nolint:gocritic // M2 is capitalized per RFC 5054 notation
func (c *Client) VerifySession(M2 []byte) {
	c.authenticated = false
	if c.M1 == nil || c.K == nil {
		return
	}

	expected := serverProof(c.A, c.M1, c.K)
	c.authenticated = subtle.ConstantTimeCompare(expected, M2) == 1
}

// Authenticated reports whether the device proof has been verified.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// SessionKey returns the session key K, or nil unless the device proof has been verified.
func (c *Client) SessionKey() []byte {
	if !c.authenticated {
		return nil
	}
	return copyBytes(c.K)
}

// ClearSecrets clears sensitive values from memory.
func (c *Client) ClearSecrets() {
	c.password = ""
	c.reset()
}

func (c *Client) reset() {
	// Clear big integers
	if c.a != nil {
		c.a.SetInt64(0)
	}
	if c.S != nil {
		c.S.SetInt64(0)
	}

	// Clear byte slices
	zero(c.K)
	zero(c.M1)

	c.a, c.A, c.B, c.S = nil, nil, nil, nil
	c.K, c.M1 = nil, nil
	c.authenticated = false
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
