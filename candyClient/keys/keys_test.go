package keys

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a.PublicKey(), b.PublicKey())
}

func TestParseRoundTrip(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	t.Run("json array", func(t *testing.T) {
		secret := FormatSecret(key)
		assert.True(t, strings.HasPrefix(secret, "["))
		assert.NotContains(t, secret, " ")

		parsed, err := Parse(secret)
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	})

	t.Run("json array with whitespace", func(t *testing.T) {
		secret := "  " + strings.ReplaceAll(FormatSecret(key), ",", ", ") + "\n"
		parsed, err := Parse(secret)
		require.NoError(t, err)
		assert.Equal(t, key.PublicKey(), parsed.PublicKey())
	})

	t.Run("base58", func(t *testing.T) {
		parsed, err := Parse(FormatBase58(key))
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
		assert.Equal(t, key.String(), FormatBase58(key))
	})
}

func TestParseErrors(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	tampered := append(solana.PrivateKey{}, key...)
	tampered[40] ^= 0xff

	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"empty", "   ", "empty secret key"},
		{"bad json", "[1,2,", "failed to parse secret key array"},
		{"byte out of range", "[256]", "out of range"},
		{"short array", "[1,2,3]", "secret key must be 64 bytes"},
		{"bad base58", "0OIl", "failed to decode base58"},
		{"mismatched public half", FormatSecret(tampered), "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	t.Setenv("PCANDY_TEST_KEY", FormatSecret(key))
	loaded, err := LoadFromEnv("PCANDY_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())

	_, err = LoadFromEnv("PCANDY_TEST_KEY_MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not set")

	t.Setenv("PCANDY_TEST_KEY_BAD", "[1]")
	_, err = LoadFromEnv("PCANDY_TEST_KEY_BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load PCANDY_TEST_KEY_BAD")
}

func TestLoadFromFile(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, []byte(FormatSecret(key)), 0o600))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestNewUUID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		uuid, err := NewUUID()
		require.NoError(t, err)
		require.NoError(t, layout.ValidateUUID(uuid))
		seen[uuid] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
