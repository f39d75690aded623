package instructions

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/idl"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// Mirrors of the program's argument structs, serialized independently with borsh-go.
type borshCreator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type borshConfigData struct {
	UUID                 string
	Symbol               string
	SellerFeeBasisPoints uint16
	Creators             []borshCreator
	MaxSupply            uint64
	IsMutable            bool
	RetainAuthority      bool
	MaxNumberOfLines     uint32
}

type borshConfigLine struct {
	Name string
	URI  string
}

type borshAddConfigLines struct {
	Index uint32
	Lines []borshConfigLine
}

type borshCandyMachineArgs struct {
	Bump           uint8
	UUID           string
	Price          uint64
	ItemsAvailable uint64
	GoLiveDate     *int64
}

type borshUpdateArgs struct {
	Price      *uint64
	GoLiveDate *int64
}

func withDisc(t *testing.T, method string, v interface{}) []byte {
	t.Helper()
	body, err := borsh.Serialize(v)
	require.NoError(t, err)
	disc := Discriminator(method)
	return append(disc[:], body...)
}

func TestDiscriminator(t *testing.T) {
	tests := []struct {
		method string
		want   [8]byte
	}{
		{MethodInitializeConfig, [8]byte{208, 127, 21, 1, 194, 190, 196, 70}},
		{MethodAddConfigLines, [8]byte{223, 50, 224, 227, 151, 8, 115, 106}},
		{MethodInitializeCandyMachine, [8]byte{142, 137, 167, 107, 47, 39, 240, 124}},
		{MethodMintNFT, [8]byte{211, 57, 6, 167, 15, 219, 35, 251}},
		{MethodUpdateCandyMachine, [8]byte{243, 251, 124, 156, 211, 211, 118, 239}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, Discriminator(tt.method))
		})
	}
}

func validConfigData(t *testing.T) ConfigData {
	return ConfigData{
		UUID:                 "AbC123",
		Symbol:               "GEN",
		SellerFeeBasisPoints: 500,
		Creators:             []Creator{{Address: newKey(t), Verified: false, Share: 100}},
		MaxSupply:            1,
		IsMutable:            true,
		RetainAuthority:      true,
		MaxNumberOfLines:     5,
	}
}

func TestInitializeConfig(t *testing.T) {
	b, ids := testBuilder(t)
	cfgKey, authority, payer := newKey(t), newKey(t), newKey(t)
	data := validConfigData(t)

	ix, err := b.InitializeConfig(InitializeConfigAccounts{Config: cfgKey, Authority: authority, Payer: payer}, data)
	require.NoError(t, err)

	assert.Equal(t, ids.CandyMachine, ix.ProgramID())
	assertAccounts(t, ix, []metaFlags{
		{cfgKey, true, false},
		{authority, false, false},
		{payer, true, true},
		{ids.Rent, false, false},
	})

	want := withDisc(t, MethodInitializeConfig, borshConfigData{
		UUID:                 data.UUID,
		Symbol:               data.Symbol,
		SellerFeeBasisPoints: data.SellerFeeBasisPoints,
		Creators:             []borshCreator{{Address: data.Creators[0].Address, Verified: false, Share: 100}},
		MaxSupply:            1,
		IsMutable:            true,
		RetainAuthority:      true,
		MaxNumberOfLines:     5,
	})
	assert.Equal(t, want, mustData(t, ix))
}

func TestConfigDataValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *ConfigData)
		code   cerrors.ErrorCode
	}{
		{"short uuid", func(d *ConfigData) { d.UUID = "abc" }, cerrors.ErrCodeLayout},
		{"long symbol", func(d *ConfigData) { d.Symbol = "ELEVENCHARS" }, cerrors.ErrCodeLayout},
		{"royalty over 100%", func(d *ConfigData) { d.SellerFeeBasisPoints = 10001 }, cerrors.ErrCodeValidation},
		{"six creators", func(d *ConfigData) {
			d.Creators = make([]Creator, 6)
			for i := range d.Creators {
				d.Creators[i].Share = 10
			}
			d.Creators[0].Share = 50
		}, cerrors.ErrCodeLayout},
		{"shares not 100", func(d *ConfigData) { d.Creators[0].Share = 90 }, cerrors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validConfigData(t)
			tt.mutate(&data)
			err := data.Validate()
			require.Error(t, err)
			assert.True(t, cerrors.IsCandyError(err, tt.code), "got %v", err)
		})
	}

	t.Run("no creators is allowed", func(t *testing.T) {
		data := validConfigData(t)
		data.Creators = nil
		assert.NoError(t, data.Validate())
	})
}

func TestAddConfigLines(t *testing.T) {
	b, ids := testBuilder(t)
	cfgKey, authority := newKey(t), newKey(t)
	lines := []layout.CatalogLine{
		{Name: "Gen #1", URI: "https://arweave.net/1"},
		{Name: "Gen #2", URI: "https://arweave.net/2"},
	}

	ix, err := b.AddConfigLines(AddConfigLinesAccounts{Config: cfgKey, Authority: authority}, 3, lines)
	require.NoError(t, err)

	assert.Equal(t, ids.CandyMachine, ix.ProgramID())
	assertAccounts(t, ix, []metaFlags{
		{cfgKey, true, false},
		{authority, false, true},
	})

	want := withDisc(t, MethodAddConfigLines, borshAddConfigLines{
		Index: 3,
		Lines: []borshConfigLine{{lines[0].Name, lines[0].URI}, {lines[1].Name, lines[1].URI}},
	})
	assert.Equal(t, want, mustData(t, ix))
}

func TestAddConfigLinesRejectsWideEntry(t *testing.T) {
	b, _ := testBuilder(t)

	_, err := b.AddConfigLines(AddConfigLinesAccounts{Config: newKey(t), Authority: newKey(t)}, 0, []layout.CatalogLine{
		{Name: "ok", URI: strings.Repeat("u", 200)},
		{Name: "too wide", URI: strings.Repeat("u", 201)},
	})
	require.Error(t, err)
	assert.True(t, cerrors.IsCandyError(err, cerrors.ErrCodeLayout))
}

func TestInitializeCandyMachine(t *testing.T) {
	b, ids := testBuilder(t)
	accounts := InitializeCandyMachineAccounts{
		CandyMachine: newKey(t),
		Wallet:       newKey(t),
		Config:       newKey(t),
		Authority:    newKey(t),
		Payer:        newKey(t),
	}

	t.Run("native payment without go-live", func(t *testing.T) {
		data := CandyMachineData{UUID: "XyZ789", Price: 5_000_000_000, ItemsAvailable: 5}
		ix, err := b.InitializeCandyMachine(accounts, 254, data)
		require.NoError(t, err)

		assertAccounts(t, ix, []metaFlags{
			{accounts.CandyMachine, true, false},
			{accounts.Wallet, false, false},
			{accounts.Config, false, false},
			{accounts.Authority, false, true},
			{accounts.Payer, true, true},
			{ids.System, false, false},
			{ids.Rent, false, false},
		})

		body := mustData(t, ix)
		assert.Equal(t, withDisc(t, MethodInitializeCandyMachine, borshCandyMachineArgs{
			Bump: 254, UUID: "XyZ789", Price: 5_000_000_000, ItemsAvailable: 5,
		}), body)
		assert.Equal(t, byte(0), body[len(body)-1], "go-live option tag")
	})

	t.Run("custom token with go-live", func(t *testing.T) {
		goLive := int64(1_700_000_000)
		mint := newKey(t)
		withMint := accounts
		withMint.TokenMint = &mint

		ix, err := b.InitializeCandyMachine(withMint, 7, CandyMachineData{
			UUID: "XyZ789", Price: 10, ItemsAvailable: 2, GoLiveDate: &goLive,
		})
		require.NoError(t, err)

		metas := ix.Accounts()
		require.Len(t, metas, 8)
		assert.Equal(t, mint, metas[7].PublicKey)
		assert.False(t, metas[7].IsWritable)
		assert.False(t, metas[7].IsSigner)

		body := mustData(t, ix)
		assert.Equal(t, withDisc(t, MethodInitializeCandyMachine, borshCandyMachineArgs{
			Bump: 7, UUID: "XyZ789", Price: 10, ItemsAvailable: 2, GoLiveDate: &goLive,
		}), body)
		assert.Equal(t, uint64(goLive), binary.LittleEndian.Uint64(body[len(body)-8:]))
	})

	t.Run("bad uuid", func(t *testing.T) {
		_, err := b.InitializeCandyMachine(accounts, 1, CandyMachineData{UUID: "toolong"})
		assert.True(t, cerrors.IsCandyError(err, cerrors.ErrCodeLayout))
	})
}

func TestMintNFT(t *testing.T) {
	b, ids := testBuilder(t)
	accounts := MintNFTAccounts{
		Config:          newKey(t),
		CandyMachine:    newKey(t),
		Payer:           newKey(t),
		Wallet:          newKey(t),
		Metadata:        newKey(t),
		Mint:            newKey(t),
		MintAuthority:   newKey(t),
		UpdateAuthority: newKey(t),
		MasterEdition:   newKey(t),
	}

	ix := b.MintNFT(accounts)
	assert.Equal(t, ids.CandyMachine, ix.ProgramID())
	assertAccounts(t, ix, []metaFlags{
		{accounts.Config, false, false},
		{accounts.CandyMachine, true, false},
		{accounts.Payer, true, true},
		{accounts.Wallet, true, false},
		{accounts.Metadata, true, false},
		{accounts.Mint, true, false},
		{accounts.MintAuthority, false, true},
		{accounts.UpdateAuthority, false, true},
		{accounts.MasterEdition, true, false},
		{ids.TokenMetadata, false, false},
		{ids.Token, false, false},
		{ids.System, false, false},
		{ids.Rent, false, false},
		{ids.Clock, false, false},
	})

	disc := Discriminator(MethodMintNFT)
	assert.Equal(t, disc[:], mustData(t, ix))
}

func TestUpdateCandyMachine(t *testing.T) {
	b, _ := testBuilder(t)
	accounts := UpdateCandyMachineAccounts{CandyMachine: newKey(t), Authority: newKey(t)}

	price := uint64(42)
	goLive := int64(1_650_000_000)

	tests := []struct {
		name   string
		price  *uint64
		goLive *int64
	}{
		{"both", &price, &goLive},
		{"go-live only", nil, &goLive},
		{"price only", &price, nil},
		{"neither", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := b.UpdateCandyMachine(accounts, tt.price, tt.goLive)
			require.NoError(t, err)
			assertAccounts(t, ix, []metaFlags{
				{accounts.CandyMachine, true, false},
				{accounts.Authority, false, true},
			})
			assert.Equal(t,
				withDisc(t, MethodUpdateCandyMachine, borshUpdateArgs{Price: tt.price, GoLiveDate: tt.goLive}),
				mustData(t, ix))
		})
	}
}

// Every program call must carry exactly the accounts and flags the IDL declares.
func TestMatchesIDL(t *testing.T) {
	b, _ := testBuilder(t)
	doc, err := idl.Load()
	require.NoError(t, err)

	initConfig, err := b.InitializeConfig(InitializeConfigAccounts{
		Config: newKey(t), Authority: newKey(t), Payer: newKey(t),
	}, validConfigData(t))
	require.NoError(t, err)

	addLines, err := b.AddConfigLines(AddConfigLinesAccounts{Config: newKey(t), Authority: newKey(t)}, 0, nil)
	require.NoError(t, err)

	initCM, err := b.InitializeCandyMachine(InitializeCandyMachineAccounts{
		CandyMachine: newKey(t), Wallet: newKey(t), Config: newKey(t), Authority: newKey(t), Payer: newKey(t),
	}, 255, CandyMachineData{UUID: "AbC123"})
	require.NoError(t, err)

	update, err := b.UpdateCandyMachine(UpdateCandyMachineAccounts{CandyMachine: newKey(t), Authority: newKey(t)}, nil, nil)
	require.NoError(t, err)

	mint := b.MintNFT(MintNFTAccounts{
		Config: newKey(t), CandyMachine: newKey(t), Payer: newKey(t), Wallet: newKey(t),
		Metadata: newKey(t), Mint: newKey(t), MintAuthority: newKey(t), UpdateAuthority: newKey(t),
		MasterEdition: newKey(t),
	})

	built := map[string]solana.Instruction{
		MethodInitializeConfig:       initConfig,
		MethodAddConfigLines:         addLines,
		MethodInitializeCandyMachine: initCM,
		MethodUpdateCandyMachine:     update,
		MethodMintNFT:                mint,
	}

	for method, ix := range built {
		t.Run(method, func(t *testing.T) {
			decl, err := doc.Instruction(method)
			require.NoError(t, err)

			metas := ix.Accounts()
			require.Len(t, metas, len(decl.Accounts))
			for i, acc := range decl.Accounts {
				assert.Equal(t, acc.IsMut, metas[i].IsWritable, "%s.%s writable", method, acc.Name)
				assert.Equal(t, acc.IsSigner, metas[i].IsSigner, "%s.%s signer", method, acc.Name)
			}

			data := mustData(t, ix)
			disc := Discriminator(decl.SnakeName())
			assert.Equal(t, disc[:], data[:8])
		})
	}
}
