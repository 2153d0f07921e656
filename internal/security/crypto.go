// Package security loads and persists the symmetric key used to sign
// access and refresh tokens.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// signingKeySize is 32 bytes, matching HS256's recommended minimum key
// size.
const signingKeySize = 32

// GenerateSigningKey creates a new random HS256 signing key.
func GenerateSigningKey() ([]byte, error) {
	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}

// LoadOrCreateSigningKey loads the JWT signing key from homeDir/keys/,
// generating and persisting a new one on first run.
func LoadOrCreateSigningKey(homeDir string) ([]byte, error) {
	keyDir := filepath.Join(homeDir, "keys")
	keyPath := filepath.Join(keyDir, "jwt.key")

	if raw, err := os.ReadFile(keyPath); err == nil {
		key, err := hex.DecodeString(string(raw))
		if err != nil {
			return nil, fmt.Errorf("decode signing key: %w", err)
		}
		return key, nil
	}

	key, err := GenerateSigningKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}
	return key, nil
}
