// Package users declares the server-side repository contract for credential
// records.
package users

import (
	"context"

	"github.com/dmitrijs2005/sealbox/internal/server/models"
)

type Repository interface {
	// Create inserts a new credential record. A taken username yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the record for userName, or common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
