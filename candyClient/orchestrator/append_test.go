package orchestrator

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
)

func TestAppendCatalogLines(t *testing.T) {
	ids := testIDs(t)
	ledger := new(MockLedger)
	sent := captureSends(ledger)

	wallet, authority := newPrivateKey(t), newPrivateKey(t)
	configKey := newPrivateKey(t).PublicKey()

	recorder := new(MockRecorder)
	// The journal expects index 3; the caller's offset still goes through.
	recorder.On("NextCatalogIndex", mock.Anything, configKey).Return(uint32(3), true, nil).Once()
	recorder.On("RecordCatalogAppend", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	o := newTestOrchestrator(t, ledger, testSettings(), WithRecorder(recorder))
	sig, err := o.AppendCatalogLines(context.Background(), AppendParams{
		Wallet:    wallet,
		Authority: authority,
		Config:    configKey,
		Offset:    5,
		Lines:     testCatalog(2),
	})
	require.NoError(t, err, "journal failures do not fail an accepted append")
	assert.Equal(t, testSignature, sig)
	recorder.AssertExpectations(t)

	tx := (*sent)[0]
	require.NoError(t, tx.VerifySignatures())
	assert.ElementsMatch(t, []solana.PublicKey{wallet.PublicKey(), authority.PublicKey()}, signers(tx))

	ixs := decodeInstructions(t, tx)
	require.Len(t, ixs, 1)
	assert.Equal(t, ids.CandyMachine, ixs[0].program)
	assert.Equal(t, []solana.PublicKey{configKey, authority.PublicKey()}, ixs[0].accounts)

	disc := instructions.Discriminator(instructions.MethodAddConfigLines)
	assert.Equal(t, disc[:], ixs[0].data[:8])
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(ixs[0].data[8:12]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(ixs[0].data[12:16]))

	rec := recorder.Calls[1].Arguments.Get(1).(AppendRecord)
	assert.Equal(t, AppendRecord{Config: configKey, Offset: 5, Count: 2, Signature: testSignature}, rec)
}

func TestAppendCatalogLinesValidation(t *testing.T) {
	ledger := new(MockLedger)
	o := newTestOrchestrator(t, ledger, testSettings())

	tests := []struct {
		name   string
		params AppendParams
	}{
		{"no wallet", AppendParams{Authority: newPrivateKey(t), Lines: testCatalog(1)}},
		{"no authority", AppendParams{Wallet: newPrivateKey(t), Lines: testCatalog(1)}},
		{"no lines", AppendParams{Wallet: newPrivateKey(t), Authority: newPrivateKey(t)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.AppendCatalogLines(context.Background(), tt.params)
			require.Error(t, err)
			assert.Equal(t, cerrors.ErrCodeValidation, cerrors.CodeOf(err))
		})
	}
	ledger.AssertNotCalled(t, "LatestBlockhash", mock.Anything)
}

func TestAppendCatalogBatches(t *testing.T) {
	ledger := new(MockLedger)
	sent := captureSends(ledger)
	o := newTestOrchestrator(t, ledger, testSettings())

	sigs, err := o.AppendCatalog(context.Background(), AppendParams{
		Wallet:    newPrivateKey(t),
		Authority: newPrivateKey(t),
		Config:    newPrivateKey(t).PublicKey(),
		Offset:    10,
		Lines:     testCatalog(5),
	}, 2)
	require.NoError(t, err)
	assert.Len(t, sigs, 3)

	require.Len(t, *sent, 3)
	var offsets, counts []uint32
	for _, tx := range *sent {
		data := decodeInstructions(t, tx)[0].data
		offsets = append(offsets, binary.LittleEndian.Uint32(data[8:12]))
		counts = append(counts, binary.LittleEndian.Uint32(data[12:16]))
	}
	assert.Equal(t, []uint32{10, 12, 14}, offsets)
	assert.Equal(t, []uint32{2, 2, 1}, counts)
}

func TestAppendCatalogStopsOnRejection(t *testing.T) {
	rejection := cerrors.NewSubmissionError("send_transaction", "transaction rejected", errors.New("index out of range"))

	ledger := new(MockLedger)
	ledger.On("LatestBlockhash", mock.Anything).Return(testBlockhash, nil)
	ledger.On("SendTransaction", mock.Anything, mock.Anything).Return(testSignature, nil).Once()
	ledger.On("SendTransaction", mock.Anything, mock.Anything).Return(solana.Signature{}, rejection).Once()

	o := newTestOrchestrator(t, ledger, testSettings())
	sigs, err := o.AppendCatalog(context.Background(), AppendParams{
		Wallet:    newPrivateKey(t),
		Authority: newPrivateKey(t),
		Config:    newPrivateKey(t).PublicKey(),
		Lines:     testCatalog(5),
	}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, rejection)
	assert.Contains(t, err.Error(), "index 2")
	assert.Equal(t, []solana.Signature{testSignature}, sigs)
	ledger.AssertNumberOfCalls(t, "SendTransaction", 2)
}

func TestAppendCatalogValidatesBeforeSubmitting(t *testing.T) {
	ledger := new(MockLedger)
	o := newTestOrchestrator(t, ledger, testSettings())

	lines := testCatalog(4)
	lines[3].Name = "this item name is far too long for the field"

	sigs, err := o.AppendCatalog(context.Background(), AppendParams{
		Wallet:    newPrivateKey(t),
		Authority: newPrivateKey(t),
		Config:    newPrivateKey(t).PublicKey(),
		Lines:     lines,
	}, 2)
	require.Error(t, err)
	assert.Empty(t, sigs)
	assert.Equal(t, cerrors.ErrCodeLayout, cerrors.CodeOf(err))
	ledger.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestAppendCatalogKeepsUnconfirmedSignature(t *testing.T) {
	settings := testSettings()
	settings.AwaitConfirmation = true
	timeout := cerrors.NewTimeoutError("confirm_transaction", "no status before deadline")

	ledger := new(MockLedger)
	captureSends(ledger)
	ledger.On("ConfirmTransaction", mock.Anything, testSignature).Return(nil).Once()
	ledger.On("ConfirmTransaction", mock.Anything, testSignature).Return(timeout).Once()

	o := newTestOrchestrator(t, ledger, settings)
	sigs, err := o.AppendCatalog(context.Background(), AppendParams{
		Wallet:    newPrivateKey(t),
		Authority: newPrivateKey(t),
		Config:    newPrivateKey(t).PublicKey(),
		Lines:     testCatalog(6),
	}, 2)
	require.ErrorIs(t, err, timeout)
	assert.Contains(t, err.Error(), "index 2")
	assert.Equal(t, []solana.Signature{testSignature, testSignature}, sigs)
	ledger.AssertNumberOfCalls(t, "SendTransaction", 2)
}
