package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, rating *Rating) error
	GetByID(ctx context.Context, id int64) (*Rating, error)
	GetByProjectAndUser(
		ctx context.Context,
		projectID, userID int64,
	) (*Rating, error)
	Update(ctx context.Context, rating *Rating) error
	Delete(ctx context.Context, id int64) error
	RefreshProjectReputation(ctx context.Context, projectID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert inserts the rating, or overwrites the score and comment when the
// user already rated the project.
func (r *repository) Upsert(ctx context.Context, rating *Rating) error {
	query := `
		INSERT INTO ratings (project_id, user_id, score, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id)
		DO UPDATE SET
			score = EXCLUDED.score,
			comment = EXCLUDED.comment,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rating.ProjectID,
		rating.UserID,
		rating.Score,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Rating, error) {
	query := `
		SELECT id, project_id, user_id, score, comment, created_at, updated_at
		FROM ratings
		WHERE id = $1`

	var rating Rating
	err := r.db.GetContext(ctx, &rating, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get rating: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}

	return &rating, nil
}

func (r *repository) GetByProjectAndUser(
	ctx context.Context,
	projectID, userID int64,
) (*Rating, error) {
	query := `
		SELECT id, project_id, user_id, score, comment, created_at, updated_at
		FROM ratings
		WHERE project_id = $1 AND user_id = $2`

	var rating Rating
	err := r.db.GetContext(ctx, &rating, query, projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get rating: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}

	return &rating, nil
}

func (r *repository) Update(ctx context.Context, rating *Rating) error {
	query := `
		UPDATE ratings
		SET score = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &rating.UpdatedAt, query,
		rating.ID,
		rating.Score,
		rating.Comment,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update rating: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete rating: %w", core.ErrNotFound)
	}

	return nil
}

// RefreshProjectReputation recomputes the project's average score. Must run
// in the same transaction as the rating write so the stored reputation never
// drifts from the ratings table.
func (r *repository) RefreshProjectReputation(
	ctx context.Context,
	projectID int64,
) error {
	query := `
		UPDATE projects
		SET reputation = COALESCE(
			(SELECT AVG(score) FROM ratings WHERE project_id = $1), 0)
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("refresh project reputation: %w", err)
	}

	return nil
}
