package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealbox/internal/common"
	"github.com/dmitrijs2005/sealbox/internal/dbx"
	"github.com/dmitrijs2005/sealbox/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *models.VaultRecord) (*models.VaultRecord, error) {
	query :=
		`INSERT INTO vaults (user_id, nonce, ciphertext, version)
		 VALUES ($1, $2, $3, 1)
		 RETURNING version, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Nonce, rec.Ciphertext).Scan(&rec.Version, &rec.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.VaultRecord, error) {
	query :=
		`SELECT user_id, nonce, ciphertext, version, updated_at FROM vaults
		 WHERE user_id = $1
		 `

	rec := &models.VaultRecord{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID, &rec.Nonce, &rec.Ciphertext, &rec.Version, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// Replace performs a compare-and-swap on the version column. On a miss it
// re-reads the row to tell a missing vault from a stale version; callers run
// this inside a transaction so the two statements see one snapshot.
func (r *PostgresRepository) Replace(ctx context.Context, rec *models.VaultRecord, expectedVersion int64) (*models.VaultRecord, error) {
	query :=
		`UPDATE vaults
		 SET nonce = $2, ciphertext = $3, version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $4
		 RETURNING version, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Nonce, rec.Ciphertext, expectedVersion).Scan(&rec.Version, &rec.UpdatedAt)

	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var current int64
	err = r.db.QueryRowContext(ctx, `SELECT version FROM vaults WHERE user_id = $1`, rec.UserID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return nil, fmt.Errorf("%w: stored version %d, expected %d", common.ErrVersionConflict, current, expectedVersion)
}
