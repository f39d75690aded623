// Package keys generates, imports and exports the ed25519 keypairs used by
// the operator wallet, the config account, the authority and per-item mints.
// Nothing here persists secrets.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// Generate returns a fresh random keypair.
func Generate() (solana.PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return key, nil
}

// Parse accepts either a JSON byte array ("[12,34,...]") or a base58 string
// holding the 64-byte secret.
func Parse(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty secret key")
	}

	var raw []byte
	if strings.HasPrefix(s, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return nil, fmt.Errorf("failed to parse secret key array: %w", err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("secret key byte %d out of range: %d", i, v)
			}
			raw[i] = byte(v)
		}
	} else {
		decoded, err := base58.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base58 secret key: %w", err)
		}
		raw = decoded
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("secret key public half does not match its seed")
	}
	return solana.PrivateKey(raw), nil
}

// LoadFromEnv parses the keypair stored in the named environment variable.
func LoadFromEnv(name string) (solana.PrivateKey, error) {
	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	key, err := Parse(value)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return key, nil
}

// LoadFromFile parses a keypair file such as the one written by solana-keygen.
func LoadFromFile(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	key, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair from %s: %w", path, err)
	}
	return key, nil
}

// FormatSecret renders the secret as a JSON byte array, the form accepted by
// Parse and by solana-keygen.
func FormatSecret(key solana.PrivateKey) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, b := range key {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(b)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// FormatBase58 renders the secret in base58.
func FormatBase58(key solana.PrivateKey) string {
	return base58.Encode(key)
}

// NewUUID returns a 6 character identifier taken from the base58 form of a
// throwaway public key.
func NewUUID() (string, error) {
	key, err := Generate()
	if err != nil {
		return "", err
	}
	return key.PublicKey().String()[:layout.UUIDWidth], nil
}
