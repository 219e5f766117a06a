package files

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

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (id, user_id, name, storage_key, upload_status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.ID, file.UserID, file.Name, file.StorageKey, models.UploadStatusPending).
		Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	file.UploadStatus = models.UploadStatusPending
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.File, error) {
	query :=
		`SELECT id, user_id, name, size, storage_key, upload_status, created_at, updated_at FROM files
		 WHERE id = $1 AND user_id = $2
		 `

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&file.ID, &file.UserID, &file.Name, &file.Size, &file.StorageKey,
		&file.UploadStatus, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.File, error) {
	query :=
		`SELECT id, user_id, name, size, storage_key, upload_status, created_at, updated_at FROM files
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Size, &f.StorageKey,
			&f.UploadStatus, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return files, nil
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, id, userID string, size int64) error {
	query :=
		`UPDATE files
		 SET upload_status = $3, size = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, models.UploadStatusCompleted, size)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query :=
		`DELETE FROM files
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
