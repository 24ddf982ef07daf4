package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Add(ctx context.Context, favorite *Favorite) error
	Remove(ctx context.Context, userID, projectID int64) error
	ListByUser(ctx context.Context, userID int64) ([]Favorite, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, favorite *Favorite) error {
	query := `
		INSERT INTO favorites (user_id, project_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		favorite.UserID,
		favorite.ProjectID,
	).Scan(&favorite.ID, &favorite.CreatedAt)
	if isDuplicateKeyError(err) {
		return fmt.Errorf("add favorite: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

func (r *repository) Remove(
	ctx context.Context,
	userID, projectID int64,
) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND project_id = $2`,
		userID, projectID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("remove favorite: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]Favorite, error) {
	query := `
		SELECT id, user_id, project_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var favorites []Favorite
	if err := r.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	return favorites, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
