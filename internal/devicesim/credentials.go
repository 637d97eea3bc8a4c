package devicesim

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fzdarsky/radiounlock/pkg/srp"
)

// Credentials is the verifier record a radio stores instead of its password.
type Credentials struct {
	Salt     string `yaml:"salt"`     // Hex-encoded
	Verifier string `yaml:"verifier"` // Hex-encoded, padded to the group size
}

// NewCredentials derives credentials for password with a fresh salt drawn from r.
func NewCredentials(password string, r io.Reader) (*Credentials, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	salt, err := srp.GenerateSalt(r)
	if err != nil {
		return nil, err
	}

	v := srp.ComputeVerifier(password, salt)
	return &Credentials{
		Salt:     hex.EncodeToString(salt),
		Verifier: hex.EncodeToString(srp.PadVerifier(v)),
	}, nil
}

// LoadCredentials reads and validates a credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	if _, _, err := creds.Decode(); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Decode returns the raw salt and verifier.
func (c *Credentials) Decode() ([]byte, *big.Int, error) {
	if c.Salt == "" {
		return nil, nil, errors.New("salt is required in credentials")
	}
	if c.Verifier == "" {
		return nil, nil, errors.New("verifier is required in credentials")
	}

	salt, err := hex.DecodeString(c.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("salt must be valid hex: %w", err)
	}
	if len(salt) != srp.SaltSize {
		return nil, nil, fmt.Errorf("salt must be %d bytes, got %d", srp.SaltSize, len(salt))
	}

	vBytes, err := hex.DecodeString(c.Verifier)
	if err != nil {
		return nil, nil, fmt.Errorf("verifier must be valid hex: %w", err)
	}
	v := new(big.Int).SetBytes(vBytes)
	if v.Sign() == 0 || v.Cmp(srp.N) >= 0 {
		return nil, nil, errors.New("verifier is not a valid group element")
	}

	return salt, v, nil
}

// Save writes the credentials with owner-only permissions.
func (c *Credentials) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	//nolint:gosec // G301: directory may be shared, the file itself is 0600
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// CredentialsExist reports whether a credentials file exists at path.
func CredentialsExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
