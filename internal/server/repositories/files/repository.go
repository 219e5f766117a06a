// Package files declares the server-side repository contract for sealed file
// metadata. Envelope bytes live in object storage; only bookkeeping rows are
// kept here.
package files

import (
	"context"

	"github.com/dmitrijs2005/sealbox/internal/server/models"
)

type Repository interface {
	// Create inserts a metadata row in pending state.
	Create(ctx context.Context, file *models.File) (*models.File, error)

	// GetByID returns a file owned by userID, or common.ErrorNotFound.
	GetByID(ctx context.Context, id, userID string) (*models.File, error)

	// ListByUser returns all files owned by userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.File, error)

	// MarkUploaded flips a pending row to completed and records its size.
	MarkUploaded(ctx context.Context, id, userID string, size int64) error

	// Delete removes a metadata row owned by userID.
	Delete(ctx context.Context, id, userID string) error
}
