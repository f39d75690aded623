package api

import (
	"context"

	"github.com/pushchain/candy-machine-client/candyClient/store"
)

// JournalReader is the read side of the run journal served by the API.
type JournalReader interface {
	Deployments(ctx context.Context) ([]store.Deployment, error)
	Deployment(ctx context.Context, configKey string) (*store.Deployment, error)
	Mints(ctx context.Context, distributor string, limit int) ([]store.Mint, error)
}

// HealthChecker reports whether the ledger endpoints answer.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}
