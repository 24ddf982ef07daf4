package faq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, faq *FAQ) error
	GetByID(ctx context.Context, id int64) (*FAQ, error)
	List(ctx context.Context) ([]FAQ, error)
	Update(ctx context.Context, faq *FAQ) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, faq *FAQ) error {
	query := `
		INSERT INTO faqs (question, answer)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, faq.Question, faq.Answer).
		Scan(&faq.ID, &faq.CreatedAt, &faq.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create faq: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*FAQ, error) {
	query := `
		SELECT id, question, answer, created_at, updated_at
		FROM faqs
		WHERE id = $1`

	var faq FAQ
	err := r.db.GetContext(ctx, &faq, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get faq: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get faq: %w", err)
	}

	return &faq, nil
}

func (r *repository) List(ctx context.Context) ([]FAQ, error) {
	query := `
		SELECT id, question, answer, created_at, updated_at
		FROM faqs
		ORDER BY created_at DESC`

	var faqs []FAQ
	if err := r.db.SelectContext(ctx, &faqs, query); err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}

	return faqs, nil
}

func (r *repository) Update(ctx context.Context, faq *FAQ) error {
	query := `
		UPDATE faqs
		SET question = $2, answer = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &faq.UpdatedAt, query,
		faq.ID,
		faq.Question,
		faq.Answer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update faq: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update faq: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM faqs WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete faq: %w", core.ErrNotFound)
	}

	return nil
}
