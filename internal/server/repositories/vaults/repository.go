// Package vaults declares the server-side repository contract for encrypted
// vault blobs. The server stores nonce and ciphertext opaquely; it can never
// read a vault.
package vaults

import (
	"context"

	"github.com/dmitrijs2005/sealbox/internal/server/models"
)

type Repository interface {
	// Create stores the initial vault for a user at version 1.
	Create(ctx context.Context, rec *models.VaultRecord) (*models.VaultRecord, error)

	// GetByUserID returns the user's vault, or common.ErrorNotFound.
	GetByUserID(ctx context.Context, userID string) (*models.VaultRecord, error)

	// Replace swaps the vault contents if the stored version equals
	// expectedVersion, bumping the version. A stale expectedVersion yields
	// common.ErrVersionConflict; a missing vault common.ErrorNotFound.
	Replace(ctx context.Context, rec *models.VaultRecord, expectedVersion int64) (*models.VaultRecord, error)
}
