// Package session stores the material produced by a successful unlock so the
// encryption layer can pick it up after the CLI exits.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fzdarsky/radiounlock/internal/cli/config"
	"gopkg.in/yaml.v3"
)

const (
	materialFileMode = 0o600 // Owner read/write only
)

// Material is the session key and nonce pair published by one unlock.
type Material struct {
	Device     string
	SessionKey []byte
	TxNonce    []byte
	RxNonce    []byte
	CreatedAt  time.Time
}

// fileFormat is the on-disk representation of Material.
type fileFormat struct {
	Device     string    `yaml:"device"`
	SessionKey string    `yaml:"session_key"`
	TxNonce    string    `yaml:"tx_nonce"`
	RxNonce    string    `yaml:"rx_nonce"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// Store manages session material persistence in the OS cache directory.
type Store struct {
	dir string
}

// NewStore creates a new session store.
// The store uses the OS-specific cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := config.UserCacheDir()
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cacheDir); err != nil {
		return nil, err
	}

	return &Store{dir: cacheDir}, nil
}

// Save writes the session material for m.Device with 0600 permissions.
func (s *Store) Save(m *Material) error {
	data, err := yaml.Marshal(fileFormat{
		Device:     m.Device,
		SessionKey: hex.EncodeToString(m.SessionKey),
		TxNonce:    hex.EncodeToString(m.TxNonce),
		RxNonce:    hex.EncodeToString(m.RxNonce),
		CreatedAt:  m.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session material: %w", err)
	}

	if err := os.WriteFile(s.filename(m.Device), data, materialFileMode); err != nil {
		return fmt.Errorf("failed to save session material: %w", err)
	}

	return nil
}

// Load loads the session material stored for device.
// Returns nil if nothing is stored.
func (s *Store) Load(device string) (*Material, error) {
	data, err := os.ReadFile(s.filename(device)) // #nosec G304 - filename is generated from hash of device
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session material: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session material: %w", err)
	}

	m := &Material{Device: f.Device, CreatedAt: f.CreatedAt}
	for _, field := range []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"session_key", f.SessionKey, &m.SessionKey},
		{"tx_nonce", f.TxNonce, &m.TxNonce},
		{"rx_nonce", f.RxNonce, &m.RxNonce},
	} {
		b, err := hex.DecodeString(field.src)
		if err != nil {
			return nil, fmt.Errorf("invalid %s in session material: %w", field.name, err)
		}
		*field.dst = b
	}

	return m, nil
}

// Delete deletes the session material stored for device.
func (s *Store) Delete(device string) error {
	if err := os.Remove(s.filename(device)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session material: %w", err)
	}

	return nil
}

// filename uses the first 16 hex characters of the SHA-256 hash of the device
// identifier. Format: session-<hash>.yaml
func (s *Store) filename(device string) string {
	hash := sha256.Sum256([]byte(device))
	return filepath.Join(s.dir, fmt.Sprintf("session-%x.yaml", hash[:8]))
}
