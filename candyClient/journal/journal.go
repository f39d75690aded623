// Package journal records accepted workflows in the local SQLite database
// and answers the queries of the status server.
package journal

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pushchain/candy-machine-client/candyClient/db"
	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
	"github.com/pushchain/candy-machine-client/candyClient/orchestrator"
	"github.com/pushchain/candy-machine-client/candyClient/store"
)

// ErrNotFound is returned when a deployment is not in the journal.
var ErrNotFound = errors.New("not found in journal")

// DefaultMintLimit bounds Mints when no limit is given.
const DefaultMintLimit = 100

// Journal implements orchestrator.Recorder on top of db.DB.
type Journal struct {
	db     *db.DB
	logger zerolog.Logger
}

var _ orchestrator.Recorder = (*Journal)(nil)

// New returns a Journal writing to database.
func New(database *db.DB, logger zerolog.Logger) *Journal {
	return &Journal{
		db:     database,
		logger: logger.With().Str("component", "journal").Logger(),
	}
}

// RecordDeployment stores a newly initialized distributor.
func (j *Journal) RecordDeployment(ctx context.Context, rec orchestrator.DeploymentRecord) error {
	row := store.Deployment{
		Config:           rec.Config.String(),
		Authority:        rec.Authority.String(),
		Wallet:           rec.Wallet.String(),
		Distributor:      rec.Distributor.String(),
		Bump:             rec.Bump,
		ConfigUUID:       rec.ConfigUUID,
		DistributorUUID:  rec.DistributorUUID,
		StorageSize:      rec.StorageSize,
		Capacity:         rec.Capacity,
		NextCatalogIndex: rec.CatalogLength,
		Price:            rec.Price,
		Signature:        rec.Signature.String(),
	}
	if rec.PaymentMint != nil {
		row.PaymentMint = rec.PaymentMint.String()
	}
	if err := j.db.Conn(ctx).Create(&row).Error; err != nil {
		return cerrors.NewDatabaseError("record_deployment", "failed to insert deployment", err)
	}
	j.logger.Debug().Str("config", row.Config).Msg("deployment journaled")
	return nil
}

// RecordCatalogAppend stores an append and advances the deployment's next
// catalog index when the append extends it.
func (j *Journal) RecordCatalogAppend(ctx context.Context, rec orchestrator.AppendRecord) error {
	configKey := rec.Config.String()
	err := j.db.Conn(ctx).Transaction(func(tx *gorm.DB) error {
		row := store.CatalogAppend{
			Config:    configKey,
			Offset:    rec.Offset,
			Count:     rec.Count,
			Signature: rec.Signature.String(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		var deployment store.Deployment
		err := tx.Where("config = ?", configKey).First(&deployment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		end := rec.Offset + rec.Count
		if end <= deployment.NextCatalogIndex {
			return nil
		}
		return tx.Model(&deployment).Update("next_catalog_index", end).Error
	})
	if err != nil {
		return cerrors.NewDatabaseError("record_catalog_append", "failed to journal catalog append", err)
	}
	return nil
}

// RecordMint stores a minted item.
func (j *Journal) RecordMint(ctx context.Context, rec orchestrator.MintRecord) error {
	row := store.Mint{
		Config:       rec.Config.String(),
		Distributor:  rec.Distributor.String(),
		Mint:         rec.Mint.String(),
		Recipient:    rec.Recipient.String(),
		TokenAccount: rec.TokenAccount.String(),
		Price:        rec.Price,
		Signature:    rec.Signature.String(),
	}
	if err := j.db.Conn(ctx).Create(&row).Error; err != nil {
		return cerrors.NewDatabaseError("record_mint", "failed to insert mint", err)
	}
	return nil
}

// NextCatalogIndex returns the index after the last journaled line of configKey.
func (j *Journal) NextCatalogIndex(ctx context.Context, configKey solana.PublicKey) (uint32, bool, error) {
	d, err := j.Deployment(ctx, configKey.String())
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return d.NextCatalogIndex, true, nil
}

// Deployment returns the journaled deployment of a config address.
func (j *Journal) Deployment(ctx context.Context, configKey string) (*store.Deployment, error) {
	var d store.Deployment
	err := j.db.Conn(ctx).Where("config = ?", configKey).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, cerrors.NewDatabaseError("get_deployment", "failed to query deployment", err)
	}
	return &d, nil
}

// Deployments returns all deployments, newest first.
func (j *Journal) Deployments(ctx context.Context) ([]store.Deployment, error) {
	var out []store.Deployment
	if err := j.db.Conn(ctx).Order("id DESC").Find(&out).Error; err != nil {
		return nil, cerrors.NewDatabaseError("list_deployments", "failed to query deployments", err)
	}
	return out, nil
}

// Mints returns up to limit mints, newest first, optionally filtered by
// distributor address.
func (j *Journal) Mints(ctx context.Context, distributor string, limit int) ([]store.Mint, error) {
	if limit <= 0 {
		limit = DefaultMintLimit
	}
	q := j.db.Conn(ctx).Order("id DESC").Limit(limit)
	if distributor != "" {
		q = q.Where("distributor = ?", distributor)
	}
	var out []store.Mint
	if err := q.Find(&out).Error; err != nil {
		return nil, cerrors.NewDatabaseError("list_mints", "failed to query mints", err)
	}
	return out, nil
}
