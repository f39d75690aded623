package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/candy-machine-client/candyClient/catalog"
	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// AppendParams appends Lines to an existing config account starting at Offset.
type AppendParams struct {
	Wallet    solana.PrivateKey
	Authority solana.PrivateKey
	Config    solana.PublicKey
	Offset    uint32
	Lines     []layout.CatalogLine
}

// AppendCatalogLines submits one add_config_lines transaction. Offset is
// passed to the program as given; a mismatch with the journal is only logged.
// The signature of an accepted but unconfirmed transaction is returned with
// the error.
func (o *Orchestrator) AppendCatalogLines(ctx context.Context, p AppendParams) (sig solana.Signature, err error) {
	start := time.Now()
	defer func() { o.observe(WorkflowAppend, start, err) }()

	if err := requireKey(WorkflowAppend, "wallet", p.Wallet); err != nil {
		return solana.Signature{}, err
	}
	if err := requireKey(WorkflowAppend, "authority", p.Authority); err != nil {
		return solana.Signature{}, err
	}
	if len(p.Lines) == 0 {
		return solana.Signature{}, cerrors.NewValidationError(WorkflowAppend, "no catalog lines to append")
	}

	ix, err := o.builder.AddConfigLines(instructions.AddConfigLinesAccounts{
		Config:    p.Config,
		Authority: p.Authority.PublicKey(),
	}, p.Offset, p.Lines)
	if err != nil {
		return solana.Signature{}, err
	}

	o.checkOffset(ctx, p.Config, p.Offset)

	sig, err = o.submit(ctx, WorkflowAppend, []solana.Instruction{ix}, p.Wallet, p.Authority)
	if sig.IsZero() {
		return sig, err
	}
	if err == nil {
		o.metrics.AddCatalogLines(len(p.Lines))
	}

	if o.recorder != nil && landed(sig, err) {
		rec := AppendRecord{Config: p.Config, Offset: p.Offset, Count: uint32(len(p.Lines)), Signature: sig}
		if jerr := o.recorder.RecordCatalogAppend(ctx, rec); jerr != nil {
			o.logger.Warn().Err(jerr).Str("config", p.Config.String()).Msg("failed to journal catalog append")
		}
	}
	return sig, err
}

// AppendCatalog splits Lines into batches of batchSize and submits them in
// order, each awaited before the next. It returns the signatures of the
// batches the ledger accepted, including when a later batch fails.
func (o *Orchestrator) AppendCatalog(ctx context.Context, p AppendParams, batchSize int) ([]solana.Signature, error) {
	if err := o.calc.ValidateCatalog(p.Lines); err != nil {
		return nil, err
	}

	batches := catalog.Batches(p.Lines, p.Offset, batchSize)
	sigs := make([]solana.Signature, 0, len(batches))
	for _, batch := range batches {
		params := p
		params.Offset = batch.Offset
		params.Lines = batch.Lines
		sig, err := o.AppendCatalogLines(ctx, params)
		if !sig.IsZero() {
			sigs = append(sigs, sig)
		}
		if err != nil {
			return sigs, fmt.Errorf("failed to append lines from index %d: %w", batch.Offset, err)
		}
	}
	return sigs, nil
}

// checkOffset warns when offset does not continue the journaled catalog.
func (o *Orchestrator) checkOffset(ctx context.Context, configKey solana.PublicKey, offset uint32) {
	if o.recorder == nil {
		return
	}
	next, known, err := o.recorder.NextCatalogIndex(ctx, configKey)
	if err != nil {
		o.logger.Warn().Err(err).Str("config", configKey.String()).Msg("failed to read journaled catalog index")
		return
	}
	if known && next != offset {
		o.logger.Warn().
			Str("config", configKey.String()).
			Uint32("offset", offset).
			Uint32("journaled_next", next).
			Msg("append offset does not follow the journaled catalog")
	}
}
