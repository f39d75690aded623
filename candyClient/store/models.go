// Package store contains GORM-backed SQLite models for the run journal.
//
// Database Structure (database file: pcandy.db):
//
//	databases/
//	└── pcandy.db
//	    ├── deployments
//	    ├── catalog_appends
//	    └── mints
//
// Addresses and signatures are stored in base58. Secret keys are never stored.
package store

import (
	"gorm.io/gorm"
)

// Deployment is one initialized config account and its distributor.
type Deployment struct {
	gorm.Model
	Config           string `gorm:"uniqueIndex;not null"` // Config account address
	Authority        string `gorm:"not null"`
	Wallet           string `gorm:"not null"` // Operator wallet that paid for the deployment
	Distributor      string `gorm:"index;not null"`
	Bump             uint8
	ConfigUUID       string
	DistributorUUID  string
	StorageSize      uint64 // Bytes allocated for the config account
	Capacity         uint32 // Catalog lines the config account can hold
	NextCatalogIndex uint32 // Index after the last journaled line
	Price            uint64
	PaymentMint      string // Empty for native payment
	Signature        string
}

// CatalogAppend is one add_config_lines submission.
type CatalogAppend struct {
	gorm.Model
	Config    string `gorm:"index;not null"`
	Offset    uint32
	Count     uint32
	Signature string
}

// Mint is one minted item.
type Mint struct {
	gorm.Model
	Config       string `gorm:"not null"`
	Distributor  string `gorm:"index;not null"`
	Mint         string `gorm:"uniqueIndex;not null"`
	Recipient    string `gorm:"index"`
	TokenAccount string
	Price        uint64 // Lamports forwarded to the authority, excluding the fee
	Signature    string
}
