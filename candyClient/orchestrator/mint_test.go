package orchestrator

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
	"github.com/pushchain/candy-machine-client/candyClient/state"
)

func TestMintOne(t *testing.T) {
	ids := testIDs(t)
	ledger := new(MockLedger)
	ledger.On("MinimumBalanceForRentExemption", mock.Anything, uint64(instructions.MintAccountSize)).Return(uint64(1_461_600), nil)
	sent := captureSends(ledger)

	recorder := new(MockRecorder)
	recorder.On("RecordMint", mock.Anything, mock.Anything).Return(nil)

	o := newTestOrchestrator(t, ledger, testSettings(), WithRecorder(recorder))
	wallet, authority := newPrivateKey(t), newPrivateKey(t)
	configKey := newPrivateKey(t).PublicKey()
	recipient := newPrivateKey(t).PublicKey()
	price := uint64(5_000_000_000)

	result, err := o.MintOne(context.Background(), MintParams{
		Wallet:          wallet,
		Authority:       authority,
		Config:          configKey,
		DistributorUUID: "XyZ789",
		Recipient:       recipient,
		Price:           &price,
	})
	require.NoError(t, err)
	ledger.AssertNotCalled(t, "AccountData", mock.Anything, mock.Anything)

	tx := (*sent)[0]
	require.NoError(t, tx.VerifySignatures())
	assert.Equal(t, wallet.PublicKey(), tx.Message.AccountKeys[0])
	assert.ElementsMatch(t,
		[]solana.PublicKey{wallet.PublicKey(), result.Mint, authority.PublicKey()},
		signers(tx))

	ixs := decodeInstructions(t, tx)
	assert.Equal(t, []solana.PublicKey{
		ids.System, ids.System, ids.Token, ids.AssociatedToken, ids.Token, ids.CandyMachine,
	}, programs(ixs))

	// transfer covers the price and the minting fee
	assert.Equal(t, []solana.PublicKey{wallet.PublicKey(), authority.PublicKey()}, ixs[0].accounts)
	assert.Equal(t, price+10_000_000, binary.LittleEndian.Uint64(ixs[0].data[4:12]))

	assert.Equal(t, []solana.PublicKey{wallet.PublicKey(), result.Mint}, ixs[1].accounts)
	assert.Equal(t, uint64(1_461_600), binary.LittleEndian.Uint64(ixs[1].data[4:12]))
	assert.Equal(t, uint64(instructions.MintAccountSize), binary.LittleEndian.Uint64(ixs[1].data[12:20]))

	assert.Equal(t, byte(0), ixs[2].data[1], "zero decimals")
	assert.Equal(t, authority.PublicKey().Bytes(), []byte(ixs[2].data[2:34]))

	expectedATA, _, err := solana.FindAssociatedTokenAddress(recipient, result.Mint)
	require.NoError(t, err)
	assert.Equal(t, expectedATA, result.TokenAccount)
	assert.Equal(t, []solana.PublicKey{
		wallet.PublicKey(), expectedATA, recipient, result.Mint, ids.System, ids.Token, ids.Rent,
	}, ixs[3].accounts)
	assert.Empty(t, ixs[3].data)

	assert.Equal(t, []solana.PublicKey{result.Mint, expectedATA, authority.PublicKey()}, ixs[4].accounts)
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(ixs[4].data[1:9]))

	disc := instructions.Discriminator(instructions.MethodMintNFT)
	assert.Equal(t, disc[:], []byte(ixs[5].data))
	assert.Equal(t, []solana.PublicKey{
		configKey,
		result.Distributor.Key,
		authority.PublicKey(),
		wallet.PublicKey(),
		result.Metadata,
		result.Mint,
		authority.PublicKey(),
		authority.PublicKey(),
		result.MasterEdition,
		ids.TokenMetadata,
		ids.Token,
		ids.System,
		ids.Rent,
		ids.Clock,
	}, ixs[5].accounts)

	metadata, err := o.Deriver().Metadata(result.Mint)
	require.NoError(t, err)
	assert.Equal(t, metadata.Key, result.Metadata)

	rec := recorder.Calls[0].Arguments.Get(1).(MintRecord)
	assert.Equal(t, result.Mint, rec.Mint)
	assert.Equal(t, recipient, rec.Recipient)
	assert.Equal(t, price, rec.Price)
}

func TestMintOneFreshMintEachCall(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1), nil)
	sent := captureSends(ledger)

	o := newTestOrchestrator(t, ledger, testSettings())
	params := MintParams{
		Wallet:          newPrivateKey(t),
		Authority:       newPrivateKey(t),
		Config:          newPrivateKey(t).PublicKey(),
		DistributorUUID: "XyZ789",
		Price:           new(uint64),
	}

	first, err := o.MintOne(context.Background(), params)
	require.NoError(t, err)
	second, err := o.MintOne(context.Background(), params)
	require.NoError(t, err)

	assert.NotEqual(t, first.Mint, second.Mint)
	assert.NotEqual(t, first.TokenAccount, second.TokenAccount)
	assert.NotEqual(t, first.Metadata, second.Metadata)
	assert.Equal(t, first.Distributor, second.Distributor)

	require.Len(t, *sent, 2)
	created := []solana.PublicKey{
		decodeInstructions(t, (*sent)[0])[1].accounts[1],
		decodeInstructions(t, (*sent)[1])[1].accounts[1],
	}
	assert.NotEqual(t, created[0], created[1], "mint accounts are never reused")

	// A zero recipient mints to the wallet.
	expectedATA, _, err := solana.FindAssociatedTokenAddress(params.Wallet.PublicKey(), first.Mint)
	require.NoError(t, err)
	assert.Equal(t, expectedATA, first.TokenAccount)
}

func TestMintOneReadsDistributor(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1), nil)
	sent := captureSends(ledger)

	o := newTestOrchestrator(t, ledger, testSettings())
	wallet, authority := newPrivateKey(t), newPrivateKey(t)
	configKey := newPrivateKey(t).PublicKey()
	treasury := newPrivateKey(t).PublicKey()
	goLive := int64(1)

	distributor, err := o.Deriver().Distributor(configKey, "XyZ789")
	require.NoError(t, err)
	ledger.On("AccountData", mock.Anything, distributor.Key).Return(encodeDistributor(t, state.Distributor{
		Authority: authority.PublicKey(),
		Wallet:    treasury,
		Config:    configKey,
		Data:      state.DistributorData{UUID: "XyZ789", Price: 7_000, ItemsAvailable: 5, GoLiveDate: &goLive},
		Bump:      distributor.Bump,
	}), nil).Once()

	_, err = o.MintOne(context.Background(), MintParams{
		Wallet:          wallet,
		Authority:       authority,
		Config:          configKey,
		DistributorUUID: "XyZ789",
	})
	require.NoError(t, err)
	ledger.AssertExpectations(t)

	ixs := decodeInstructions(t, (*sent)[0])
	assert.Equal(t, uint64(7_000+10_000_000), binary.LittleEndian.Uint64(ixs[0].data[4:12]))
	assert.Equal(t, treasury, ixs[5].accounts[3], "mint_nft pays the distributor's wallet")
}

func TestMintOneRejections(t *testing.T) {
	t.Run("custom token distributor", func(t *testing.T) {
		ledger := new(MockLedger)
		o := newTestOrchestrator(t, ledger, testSettings())
		configKey := newPrivateKey(t).PublicKey()
		tokenMint := newPrivateKey(t).PublicKey()

		ledger.On("AccountData", mock.Anything, mock.Anything).Return(encodeDistributor(t, state.Distributor{
			Config:    configKey,
			TokenMint: &tokenMint,
			Data:      state.DistributorData{UUID: "XyZ789", Price: 1, ItemsAvailable: 1},
		}), nil)

		_, err := o.MintOne(context.Background(), MintParams{
			Wallet:          newPrivateKey(t),
			Authority:       newPrivateKey(t),
			Config:          configKey,
			DistributorUUID: "XyZ789",
		})
		require.Error(t, err)
		assert.Equal(t, cerrors.ErrCodeValidation, cerrors.CodeOf(err))
		ledger.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	})

	t.Run("missing authority", func(t *testing.T) {
		ledger := new(MockLedger)
		o := newTestOrchestrator(t, ledger, testSettings())

		_, err := o.MintOne(context.Background(), MintParams{Wallet: newPrivateKey(t), DistributorUUID: "XyZ789"})
		require.Error(t, err)
		assert.Equal(t, cerrors.ErrCodeValidation, cerrors.CodeOf(err))
	})

	t.Run("program rejection is returned unchanged", func(t *testing.T) {
		rejection := cerrors.NewSubmissionError("send_transaction", "transaction rejected", nil)
		ledger := new(MockLedger)
		ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1), nil)
		ledger.On("LatestBlockhash", mock.Anything).Return(testBlockhash, nil)
		ledger.On("SendTransaction", mock.Anything, mock.Anything).Return(solana.Signature{}, rejection).Once()

		o := newTestOrchestrator(t, ledger, testSettings())
		_, err := o.MintOne(context.Background(), MintParams{
			Wallet:          newPrivateKey(t),
			Authority:       newPrivateKey(t),
			Config:          newPrivateKey(t).PublicKey(),
			DistributorUUID: "XyZ789",
			Price:           new(uint64),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, rejection)
		ledger.AssertNumberOfCalls(t, "SendTransaction", 1)
	})
}

func TestMintOneUnconfirmedKeepsResult(t *testing.T) {
	settings := testSettings()
	settings.AwaitConfirmation = true
	timeout := cerrors.NewTimeoutError("confirm_transaction", "no status before deadline")

	ledger := new(MockLedger)
	ledger.On("MinimumBalanceForRentExemption", mock.Anything, mock.Anything).Return(uint64(1), nil)
	sent := captureSends(ledger)
	ledger.On("ConfirmTransaction", mock.Anything, testSignature).Return(timeout).Once()

	recorder := new(MockRecorder)
	recorder.On("RecordMint", mock.Anything, mock.Anything).Return(nil).Once()

	o := newTestOrchestrator(t, ledger, settings, WithRecorder(recorder))
	result, err := o.MintOne(context.Background(), MintParams{
		Wallet:          newPrivateKey(t),
		Authority:       newPrivateKey(t),
		Config:          newPrivateKey(t).PublicKey(),
		DistributorUUID: "XyZ789",
		Price:           new(uint64),
	})
	require.ErrorIs(t, err, timeout)
	require.NotNil(t, result)
	assert.Equal(t, testSignature, result.Signature)
	assert.Equal(t, decodeInstructions(t, (*sent)[0])[1].accounts[1], result.Mint)

	recorder.AssertExpectations(t)
	rec := recorder.Calls[0].Arguments.Get(1).(MintRecord)
	assert.Equal(t, result.Mint, rec.Mint)
}
