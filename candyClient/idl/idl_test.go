package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nft_candy_machine", doc.Name)
	assert.Len(t, doc.Instructions, 5)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, doc, again)
}

func TestInstruction(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		accounts int
		args     int
	}{
		{"mintNft", 14, 0},
		{"mint_nft", 14, 0},
		{"initializeConfig", 4, 1},
		{"add_config_lines", 2, 2},
		{"initializeCandyMachine", 7, 2},
		{"updateCandyMachine", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := doc.Instruction(tt.name)
			require.NoError(t, err)
			assert.Len(t, ix.Accounts, tt.accounts)
			assert.Len(t, ix.Args, tt.args)
		})
	}

	_, err = doc.Instruction("withdrawFunds")
	assert.Error(t, err)
}

func TestType(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	cm, err := doc.Type("CandyMachine")
	require.NoError(t, err)
	assert.Equal(t, "struct", cm.Type.Kind)
	assert.Len(t, cm.Type.Fields, 7)

	cfg, err := doc.Type("ConfigData")
	require.NoError(t, err)
	assert.Len(t, cfg.Type.Fields, 8)

	_, err = doc.Type("Nope")
	assert.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "mint_nft", SnakeCase("mintNft"))
	assert.Equal(t, "initialize_candy_machine", SnakeCase("initializeCandyMachine"))
	assert.Equal(t, "add_config_lines", SnakeCase("addConfigLines"))
	assert.Equal(t, "plain", SnakeCase("plain"))
}

func TestRawIsCopy(t *testing.T) {
	a := Raw()
	a[0] = 'x'
	assert.NotEqual(t, a[0], Raw()[0])
}
