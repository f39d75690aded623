// Package ledger adapts the Solana JSON-RPC API to the ledger operations the
// orchestrator awaits: rent queries, blockhashes, account reads, submission
// and confirmation polling.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rs/zerolog"

	"github.com/pushchain/candy-machine-client/candyClient/config"
	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
)

// ErrAccountNotFound is returned by AccountData when the address holds no account.
var ErrAccountNotFound = errors.New("account not found")

// RPCLedger talks to one or more RPC endpoints. Reads rotate through the
// endpoints and are retried with backoff; submissions are sent exactly once.
type RPCLedger struct {
	clients []*rpc.Client
	index   uint64
	mu      sync.RWMutex

	commitment     rpc.CommitmentType
	skipPreflight  bool
	requestTimeout time.Duration
	pollInterval   time.Duration
	confirmTimeout time.Duration
	retry          cerrors.ReadRetryPolicy

	logger zerolog.Logger
}

// New creates an RPCLedger from the loaded config.
func New(cfg *config.Config, logger zerolog.Logger) (*RPCLedger, error) {
	if len(cfg.RPCURLs) == 0 {
		return nil, cerrors.NewConfigError("ledger", "no RPC URLs provided")
	}

	clients := make([]*rpc.Client, 0, len(cfg.RPCURLs))
	for _, url := range cfg.RPCURLs {
		clients = append(clients, rpc.New(url))
	}

	log := logger.With().Str("component", "rpc_ledger").Logger()
	retry := cerrors.DefaultReadRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.Attempts = cfg.MaxRetries
	}
	if cfg.RetryBackoffMillis > 0 {
		retry.Backoff = time.Duration(cfg.RetryBackoffMillis) * time.Millisecond
	}
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying ledger read")
	}

	pollInterval := cfg.ConfirmPollInterval()
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}

	return &RPCLedger{
		clients:        clients,
		commitment:     cfg.CommitmentType(),
		skipPreflight:  cfg.SkipPreflight,
		requestTimeout: cfg.RequestTimeout(),
		pollInterval:   pollInterval,
		confirmTimeout: cfg.ConfirmTimeout(),
		retry:          retry,
		logger:         log,
	}, nil
}

// next returns the client whose turn it is.
func (l *RPCLedger) next() (*rpc.Client, error) {
	l.mu.RLock()
	clients := l.clients
	l.mu.RUnlock()

	if len(clients) == 0 {
		return nil, cerrors.NewConfigError("ledger", "no RPC clients available")
	}
	index := atomic.AddUint64(&l.index, 1) - 1
	return clients[index%uint64(len(clients))], nil
}

// executeWithFailover runs fn against each endpoint in turn until one succeeds.
func (l *RPCLedger) executeWithFailover(ctx context.Context, operation string, fn func(context.Context, *rpc.Client) error) error {
	l.mu.RLock()
	attempts := len(l.clients)
	l.mu.RUnlock()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		client, err := l.next()
		if err != nil {
			return err
		}

		callCtx, cancel := l.withTimeout(ctx)
		err = fn(callCtx, client)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrAccountNotFound) {
			return err
		}
		lastErr = err

		l.logger.Warn().
			Str("operation", operation).
			Int("attempt", attempt+1).
			Err(err).
			Msg("operation failed, trying next endpoint")
	}

	return cerrors.NewRPCError(operation, fmt.Sprintf("failed after trying %d endpoints", attempts), lastErr)
}

// read wraps an idempotent query with endpoint failover and backoff retries.
func (l *RPCLedger) read(ctx context.Context, operation string, fn func(context.Context, *rpc.Client) error) error {
	return cerrors.RetryRead(ctx, l.retry, func() error {
		return l.executeWithFailover(ctx, operation, fn)
	})
}

func (l *RPCLedger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.requestTimeout)
}

// MinimumBalanceForRentExemption returns the lamports an account of size bytes needs.
func (l *RPCLedger) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	var lamports uint64
	err := l.read(ctx, "get_minimum_balance_for_rent_exemption", func(ctx context.Context, client *rpc.Client) error {
		var innerErr error
		lamports, innerErr = client.GetMinimumBalanceForRentExemption(ctx, size, l.commitment)
		return innerErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query rent exemption for %d bytes: %w", size, err)
	}
	return lamports, nil
}

// LatestBlockhash returns a blockhash to bind a new transaction to.
func (l *RPCLedger) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	err := l.read(ctx, "get_latest_blockhash", func(ctx context.Context, client *rpc.Client) error {
		resp, innerErr := client.GetLatestBlockhash(ctx, l.commitment)
		if innerErr != nil {
			return innerErr
		}
		blockhash = resp.Value.Blockhash
		return nil
	})
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return blockhash, nil
}

// AccountData returns the raw data of the account at key.
func (l *RPCLedger) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	var data []byte
	err := l.read(ctx, "get_account_info", func(ctx context.Context, client *rpc.Client) error {
		resp, innerErr := client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: l.commitment,
		})
		if errors.Is(innerErr, rpc.ErrNotFound) || (innerErr == nil && (resp == nil || resp.Value == nil)) {
			return fmt.Errorf("%s: %w", key, ErrAccountNotFound)
		}
		if innerErr != nil {
			return innerErr
		}
		data = resp.Value.Data.GetBinary()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read account %s: %w", key, err)
	}
	return data, nil
}

// SendTransaction submits a signed transaction once. A rejection comes back
// as a submission or insufficient-funds error whose cause is the ledger's own
// error value.
func (l *RPCLedger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, cerrors.NewValidationError("send_transaction", "transaction has no signatures")
	}

	client, err := l.next()
	if err != nil {
		return solana.Signature{}, err
	}

	callCtx, cancel := l.withTimeout(ctx)
	defer cancel()

	sig, err := client.SendTransactionWithOpts(callCtx, tx, rpc.TransactionOpts{
		SkipPreflight:       l.skipPreflight,
		PreflightCommitment: l.commitment,
	})
	if err != nil {
		return solana.Signature{}, classifySubmission(err)
	}

	l.logger.Debug().Str("signature", sig.String()).Msg("transaction submitted")
	return sig, nil
}

// ConfirmTransaction polls the signature status until the configured
// commitment is reached, the transaction fails on chain, or the timeout expires.
func (l *RPCLedger) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	if l.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		var statuses *rpc.GetSignatureStatusesResult
		err := l.executeWithFailover(ctx, "get_signature_statuses", func(ctx context.Context, client *rpc.Client) error {
			var innerErr error
			statuses, innerErr = client.GetSignatureStatuses(ctx, false, sig)
			return innerErr
		})
		if err != nil {
			l.logger.Debug().Err(err).Str("signature", sig.String()).Msg("error checking transaction status")
		} else if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return cerrors.NewSubmissionError("confirm_transaction", "transaction failed on chain",
					fmt.Errorf("%v", status.Err)).WithContext("signature", sig.String())
			}
			if reached(status.ConfirmationStatus, l.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return cerrors.NewTimeoutError("confirm_transaction",
					fmt.Sprintf("signature %s not %s in time", sig, l.commitment))
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsHealthy reports whether any endpoint answers getHealth with "ok".
func (l *RPCLedger) IsHealthy(ctx context.Context) bool {
	err := l.executeWithFailover(ctx, "get_health", func(ctx context.Context, client *rpc.Client) error {
		health, err := client.GetHealth(ctx)
		if err != nil {
			return err
		}
		if health != "ok" {
			return fmt.Errorf("node reports %q", health)
		}
		return nil
	})
	return err == nil
}

// Close drops all endpoints.
func (l *RPCLedger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clients = nil
}

var statusRank = map[rpc.ConfirmationStatusType]int{
	rpc.ConfirmationStatusProcessed: 1,
	rpc.ConfirmationStatusConfirmed: 2,
	rpc.ConfirmationStatusFinalized: 3,
}

var commitmentRank = map[rpc.CommitmentType]int{
	rpc.CommitmentProcessed: 1,
	rpc.CommitmentConfirmed: 2,
	rpc.CommitmentFinalized: 3,
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	have := statusRank[status]
	return have > 0 && have >= commitmentRank[want]
}

var insufficientFundsMarkers = []string{
	"insufficient funds",
	"insufficient lamports",
	"attempt to debit an account but found no record of a prior credit",
}

// classifySubmission maps a sendTransaction failure onto the error taxonomy
// without altering the underlying error.
func classifySubmission(err error) error {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return cerrors.NewCandyError(cerrors.ErrCodeTimeout, "send_transaction", "submission timed out", err)
		}
		return cerrors.NewNetworkError("send_transaction", "submission did not reach the ledger", err)
	}

	text := strings.ToLower(rpcErr.Message + " " + fmt.Sprint(rpcErr.Data))
	for _, marker := range insufficientFundsMarkers {
		if strings.Contains(text, marker) {
			return cerrors.NewInsufficientFundsError("send_transaction", "ledger rejected transaction", err).
				WithContext("rpc_code", rpcErr.Code)
		}
	}
	return cerrors.NewSubmissionError("send_transaction", "ledger rejected transaction", err).
		WithContext("rpc_code", rpcErr.Code)
}
