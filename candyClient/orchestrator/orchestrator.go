// Package orchestrator composes the candy machine workflows into atomic
// transactions and submits them through a ledger client.
//
// Every workflow awaits its ledger queries (rent, blockhash, account state)
// before handing the results to the synchronous instruction builder. A
// rejected transaction is returned to the caller wrapped but otherwise
// unchanged; nothing is retried or rolled back.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/instructions"
	"github.com/pushchain/candy-machine-client/candyClient/layout"
	"github.com/pushchain/candy-machine-client/candyClient/metrics"
	"github.com/pushchain/candy-machine-client/candyClient/pda"
)

// Workflow names used in logs and metrics.
const (
	WorkflowInitialize = "initialize_distributor"
	WorkflowAppend     = "append_catalog_lines"
	WorkflowMint       = "mint_one"
	WorkflowUpdate     = "update_distributor"
)

// Ledger is the subset of the ledger client the workflows depend on.
type Ledger interface {
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}

// Recorder keeps a local journal of submitted workflows. Journal failures
// never fail a workflow that the ledger accepted.
type Recorder interface {
	RecordDeployment(ctx context.Context, rec DeploymentRecord) error
	RecordCatalogAppend(ctx context.Context, rec AppendRecord) error
	RecordMint(ctx context.Context, rec MintRecord) error
	// NextCatalogIndex returns the index after the last journaled line of
	// config, and false when config is unknown.
	NextCatalogIndex(ctx context.Context, configKey solana.PublicKey) (uint32, bool, error)
}

// DeploymentRecord describes an initialized distributor. It holds no secrets.
type DeploymentRecord struct {
	Config          solana.PublicKey
	Authority       solana.PublicKey
	Wallet          solana.PublicKey
	Distributor     solana.PublicKey
	Bump            uint8
	ConfigUUID      string
	DistributorUUID string
	StorageSize     uint64
	Capacity        uint32
	CatalogLength   uint32
	Price           uint64
	PaymentMint     *solana.PublicKey
	Signature       solana.Signature
}

// AppendRecord describes one add_config_lines submission.
type AppendRecord struct {
	Config    solana.PublicKey
	Offset    uint32
	Count     uint32
	Signature solana.Signature
}

// MintRecord describes one minted item.
type MintRecord struct {
	Config       solana.PublicKey
	Distributor  solana.PublicKey
	Mint         solana.PublicKey
	Recipient    solana.PublicKey
	TokenAccount solana.PublicKey
	Price        uint64
	Signature    solana.Signature
}

// Settings are the fixed amounts and submission behavior shared by all workflows.
type Settings struct {
	AwaitConfirmation        bool
	AuthorityFundingLamports uint64
	MintFeeLamports          uint64
}

// SettingsFromConfig extracts Settings from a validated config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		AwaitConfirmation:        cfg.AwaitConfirmation,
		AuthorityFundingLamports: cfg.AuthorityFundingLamports,
		MintFeeLamports:          cfg.MintFeeLamports,
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder journals every accepted workflow.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithMetrics records workflow outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator holds only immutable configuration and is safe for concurrent use.
type Orchestrator struct {
	ledger   Ledger
	builder  *instructions.Builder
	deriver  *pda.Deriver
	calc     *layout.Calculator
	settings Settings
	recorder Recorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New returns an Orchestrator submitting through ledger.
func New(
	ledger Ledger,
	ids config.ProgramIDs,
	calc *layout.Calculator,
	settings Settings,
	logger zerolog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		ledger:   ledger,
		builder:  instructions.NewBuilder(ids, calc),
		deriver:  pda.NewDeriver(ids),
		calc:     calc,
		settings: settings,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Deriver exposes the address derivation bound to the same program ids.
func (o *Orchestrator) Deriver() *pda.Deriver {
	return o.deriver
}

// Calculator exposes the byte-layout calculator used to size config accounts.
func (o *Orchestrator) Calculator() *layout.Calculator {
	return o.calc
}

// rentExempt queries the minimum balance for an account of size bytes.
func (o *Orchestrator) rentExempt(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := o.ledger.MinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, fmt.Errorf("failed to query rent exemption for %d bytes: %w", size, err)
	}
	return lamports, nil
}

// submit signs ixs as one transaction paid by payer and sends it. signers
// must include every account the instructions mark as signer. Once the
// ledger accepts the transaction the signature is returned even when
// confirmation fails.
func (o *Orchestrator) submit(
	ctx context.Context,
	workflow string,
	ixs []solana.Instruction,
	payer solana.PrivateKey,
	signers ...solana.PrivateKey,
) (solana.Signature, error) {
	blockhash, err := o.ledger.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, cerrors.NewInternalError(workflow, "failed to build transaction", err)
	}

	keyring := make(map[solana.PublicKey]solana.PrivateKey, len(signers)+1)
	keyring[payer.PublicKey()] = payer
	for _, s := range signers {
		keyring[s.PublicKey()] = s
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if k, ok := keyring[key]; ok {
			return &k
		}
		return nil
	}); err != nil {
		return solana.Signature{}, cerrors.NewInternalError(workflow, "failed to sign transaction", err)
	}

	sig, err := o.ledger.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%s transaction rejected: %w", workflow, err)
	}
	o.logger.Info().
		Str("workflow", workflow).
		Str("signature", sig.String()).
		Int("instructions", len(ixs)).
		Msg("transaction submitted")

	if o.settings.AwaitConfirmation {
		if err := o.ledger.ConfirmTransaction(ctx, sig); err != nil {
			return sig, fmt.Errorf("%s transaction %s not confirmed: %w", workflow, sig, err)
		}
		o.logger.Debug().Str("signature", sig.String()).Msg("transaction confirmed")
	}
	return sig, nil
}

// observe records the outcome of a workflow started at start.
func (o *Orchestrator) observe(workflow string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		switch cerrors.CodeOf(err) {
		case cerrors.ErrCodeSubmission, cerrors.ErrCodeInsufficientFunds:
			outcome = metrics.OutcomeRejected
		}
		o.logger.Error().Err(err).Str("workflow", workflow).Msg("workflow failed")
	}
	o.metrics.ObserveWorkflow(workflow, outcome, time.Since(start))
}

// landed reports whether a submitted transaction may have executed: the
// ledger accepted it and confirmation did not report a failure.
func landed(sig solana.Signature, err error) bool {
	if sig.IsZero() {
		return false
	}
	switch cerrors.CodeOf(err) {
	case cerrors.ErrCodeSubmission, cerrors.ErrCodeInsufficientFunds:
		return false
	}
	return true
}

func generateIfEmpty(key solana.PrivateKey) (solana.PrivateKey, error) {
	if len(key) != 0 {
		return key, nil
	}
	return solana.NewRandomPrivateKey()
}

func requireKey(operation, name string, key solana.PrivateKey) error {
	if len(key) == 0 {
		return cerrors.NewValidationError(operation, name+" keypair is required")
	}
	return nil
}
