package constant

import "os"

// <NodeDir>/                    (e.g., /home/operator/.pcandy)
// └── config/
//	└── pcandy_config.json
// └── databases/
//	└── pcandy.db

const (
	NodeDir = ".pcandy"

	ConfigSubdir   = "config"
	ConfigFileName = "pcandy_config.json"

	DatabasesSubdir = "databases"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir

// Well-known program ids of the pinned candy machine deployment.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetadataProgramID   = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	CandyMachineProgramID    = "cndyAnrLdpjq1Ssp1z8xxDsB8dxe7u4HL5Nxi2K5WXZ"
)

// PDA seeds
const (
	SeedCandyMachine = "candy_machine"
	SeedMetadata     = "metadata"
	SeedEdition      = "edition"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// Environment variables read by the CLI, matching the names printed by `pcandy init`.
const (
	EnvWallet           = "MY_WALLET"
	EnvConfig           = "CONFIG"
	EnvAuthority        = "AUTHORITY"
	EnvCandyMachineUUID = "CANDY_MACHINE_UUID"
)
