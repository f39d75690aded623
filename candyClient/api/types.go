package api

import (
	"time"

	"github.com/pushchain/candy-machine-client/candyClient/store"
)

// QueryResponse represents the standard query response format
type QueryResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeploymentView is the JSON form of a journaled deployment.
type DeploymentView struct {
	Config           string    `json:"config"`
	Authority        string    `json:"authority"`
	Wallet           string    `json:"wallet"`
	Distributor      string    `json:"distributor"`
	Bump             uint8     `json:"bump"`
	ConfigUUID       string    `json:"config_uuid"`
	DistributorUUID  string    `json:"distributor_uuid"`
	StorageSize      uint64    `json:"storage_size"`
	Capacity         uint32    `json:"capacity"`
	NextCatalogIndex uint32    `json:"next_catalog_index"`
	Price            uint64    `json:"price"`
	PaymentMint      string    `json:"payment_mint,omitempty"`
	Signature        string    `json:"signature"`
	CreatedAt        time.Time `json:"created_at"`
}

// MintView is the JSON form of a journaled mint.
type MintView struct {
	Config       string    `json:"config"`
	Distributor  string    `json:"distributor"`
	Mint         string    `json:"mint"`
	Recipient    string    `json:"recipient"`
	TokenAccount string    `json:"token_account"`
	Price        uint64    `json:"price"`
	Signature    string    `json:"signature"`
	CreatedAt    time.Time `json:"created_at"`
}

func newDeploymentView(d store.Deployment) DeploymentView {
	return DeploymentView{
		Config:           d.Config,
		Authority:        d.Authority,
		Wallet:           d.Wallet,
		Distributor:      d.Distributor,
		Bump:             d.Bump,
		ConfigUUID:       d.ConfigUUID,
		DistributorUUID:  d.DistributorUUID,
		StorageSize:      d.StorageSize,
		Capacity:         d.Capacity,
		NextCatalogIndex: d.NextCatalogIndex,
		Price:            d.Price,
		PaymentMint:      d.PaymentMint,
		Signature:        d.Signature,
		CreatedAt:        d.CreatedAt,
	}
}

func newMintView(m store.Mint) MintView {
	return MintView{
		Config:       m.Config,
		Distributor:  m.Distributor,
		Mint:         m.Mint,
		Recipient:    m.Recipient,
		TokenAccount: m.TokenAccount,
		Price:        m.Price,
		Signature:    m.Signature,
		CreatedAt:    m.CreatedAt,
	}
}
