package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/cryptox"
	"github.com/dmitrijs2005/sealbox/internal/dbx"
	"github.com/dmitrijs2005/sealbox/internal/server/models"
	"github.com/dmitrijs2005/sealbox/internal/server/repositories/repomanager"
)

// VaultService stores and replaces each user's single encrypted vault blob.
// The server treats nonce and ciphertext as opaque bytes; concurrency control
// is a compare-and-swap on the stored version number.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewVaultService constructs a VaultService using repositories.
func NewVaultService(db *sql.DB, m repomanager.RepositoryManager) *VaultService {
	return &VaultService{db: db, repomanager: m}
}

// Get returns the user's vault record, or common.ErrorNotFound if the user
// has never uploaded one.
func (s *VaultService) Get(ctx context.Context, userID string) (*models.VaultRecord, error) {
	repo := s.repomanager.Vaults(s.db)
	rec, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading vault: %w", err)
	}
	return rec, nil
}

// Replace swaps the user's vault contents if the stored version still equals
// expectedVersion. A client holding no vault yet passes expectedVersion 0,
// which creates the record at version 1. A stale expectedVersion yields
// common.ErrVersionConflict and the caller must re-fetch, merge, and retry.
func (s *VaultService) Replace(ctx context.Context, userID string, nonce, ciphertext []byte, expectedVersion int64) (*models.VaultRecord, error) {
	if len(nonce) != cryptox.NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", common.ErrInvalidInput, cryptox.NonceSize)
	}
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: ciphertext must not be empty", common.ErrInvalidInput)
	}
	if expectedVersion < 0 {
		return nil, fmt.Errorf("%w: version must not be negative", common.ErrInvalidInput)
	}

	rec := &models.VaultRecord{UserID: userID, Nonce: nonce, Ciphertext: ciphertext}

	var out *models.VaultRecord
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Vaults(tx)
		updated, err := repoTx.Replace(ctx, rec, expectedVersion)
		if errors.Is(err, common.ErrorNotFound) && expectedVersion == 0 {
			updated, err = repoTx.Create(ctx, rec)
		}
		if err != nil {
			return err
		}
		out = updated
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
