package file

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id int64) (*File, error)
	GetByPath(ctx context.Context, path string) (*File, error)
	Delete(ctx context.Context, id int64) error
	LinkToProject(ctx context.Context, fileID, projectID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, file *File) error {
	query := `
		INSERT INTO files (name, path, url, size, content_type, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		file.Name,
		file.Path,
		file.URL,
		file.Size,
		file.ContentType,
		file.UploaderID,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*File, error) {
	query := `
		SELECT id, name, path, url, size, content_type, uploader_id, created_at
		FROM files
		WHERE id = $1`

	var file File
	err := r.db.GetContext(ctx, &file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get file: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &file, nil
}

func (r *repository) GetByPath(
	ctx context.Context,
	path string,
) (*File, error) {
	query := `
		SELECT id, name, path, url, size, content_type, uploader_id, created_at
		FROM files
		WHERE path = $1`

	var file File
	err := r.db.GetContext(ctx, &file, query, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get file by path: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get file by path: %w", err)
	}

	return &file, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete file: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) LinkToProject(
	ctx context.Context,
	fileID, projectID int64,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_files (project_id, file_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		projectID, fileID)
	if err != nil {
		return fmt.Errorf("link file to project: %w", err)
	}

	return nil
}
