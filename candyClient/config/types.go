package config

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Client home directory (default: ~/.pcandy)

	// Ledger configuration
	RPCURLs                   []string `json:"rpc_urls"`                     // JSON-RPC endpoints, tried round-robin
	Commitment                string   `json:"commitment"`                   // processed, confirmed or finalized
	SkipPreflight             bool     `json:"skip_preflight"`               // skip simulation before submission
	AwaitConfirmation         bool     `json:"await_confirmation"`           // poll signature status after submission
	ConfirmTimeoutSeconds     int      `json:"confirm_timeout_seconds"`      // default: 60
	ConfirmPollIntervalMillis int      `json:"confirm_poll_interval_millis"` // default: 500
	RequestTimeoutSeconds     int      `json:"request_timeout_seconds"`      // per RPC call (default: 10)
	MaxRetries                int      `json:"max_retries"`                  // read retries (default: 3)
	RetryBackoffMillis        int      `json:"retry_backoff_millis"`         // initial backoff (default: 500)

	// Program identifiers
	Programs ProgramConfig `json:"programs"`

	// Distributor defaults
	Symbol                   string `json:"symbol"`                     // at most 10 bytes
	SellerFeeBasisPoints     uint16 `json:"seller_fee_basis_points"`    // 500 = 5%
	PriceLamports            uint64 `json:"price_lamports"`             // per item
	MaxSupply                uint64 `json:"max_supply"`                 // master edition supply
	IsMutable                bool   `json:"is_mutable"`                 //
	RetainAuthority          bool   `json:"retain_authority"`           //
	AuthorityFundingLamports uint64 `json:"authority_funding_lamports"` // transferred to a new authority on init
	MintFeeLamports          uint64 `json:"mint_fee_lamports"`          // added to price when funding a mint

	// Catalog
	Catalog             CatalogConfig `json:"catalog"`
	LinesPerTransaction int           `json:"lines_per_transaction"` // append batch size (default: 10)

	// Query Server Config
	QueryServerPort int `json:"query_server_port"` // Port for HTTP query server (default: 8080)

	// Journal
	DatabaseFile string `json:"database_file"` // SQLite file under <home>/databases (default: pcandy.db)
}

// ProgramConfig holds the base58 identifiers of every program the client talks to.
type ProgramConfig struct {
	CandyMachine    string `json:"candy_machine"`
	TokenMetadata   string `json:"token_metadata"`
	Token           string `json:"token"`
	AssociatedToken string `json:"associated_token"`
}

// CatalogConfig holds the fixed widths of one encoded catalog line.
type CatalogConfig struct {
	NameWidth int `json:"name_width"`
	URIWidth  int `json:"uri_width"`
}

// ProgramIDs is the resolved, immutable set of program and sysvar addresses
// injected into the derivation and assembly components.
type ProgramIDs struct {
	CandyMachine    solana.PublicKey
	TokenMetadata   solana.PublicKey
	Token           solana.PublicKey
	AssociatedToken solana.PublicKey
	System          solana.PublicKey
	Rent            solana.PublicKey
	Clock           solana.PublicKey
}

// ProgramIDs parses the configured program identifiers.
func (c *Config) ProgramIDs() (ProgramIDs, error) {
	parse := func(field, value string) (solana.PublicKey, error) {
		key, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid %s program id %q: %w", field, value, err)
		}
		return key, nil
	}

	var (
		ids ProgramIDs
		err error
	)
	if ids.CandyMachine, err = parse("candy_machine", c.Programs.CandyMachine); err != nil {
		return ProgramIDs{}, err
	}
	if ids.TokenMetadata, err = parse("token_metadata", c.Programs.TokenMetadata); err != nil {
		return ProgramIDs{}, err
	}
	if ids.Token, err = parse("token", c.Programs.Token); err != nil {
		return ProgramIDs{}, err
	}
	if ids.AssociatedToken, err = parse("associated_token", c.Programs.AssociatedToken); err != nil {
		return ProgramIDs{}, err
	}
	ids.System = solana.SystemProgramID
	ids.Rent = solana.SysVarRentPubkey
	ids.Clock = solana.SysVarClockPubkey
	return ids, nil
}

// CommitmentType returns the configured commitment as an rpc value.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// ConfirmTimeout returns the confirmation polling deadline.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

// ConfirmPollInterval returns the delay between signature status polls.
func (c *Config) ConfirmPollInterval() time.Duration {
	return time.Duration(c.ConfirmPollIntervalMillis) * time.Millisecond
}

// RequestTimeout returns the per-call RPC timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
