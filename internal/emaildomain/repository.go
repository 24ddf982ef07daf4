package emaildomain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, domain *EmailDomain) error
	List(ctx context.Context) ([]EmailDomain, error)
	ListActive(ctx context.Context, limit int) ([]string, error)
	ExistsActive(ctx context.Context, domain string) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) (*EmailDomain, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(
	ctx context.Context,
	domain *EmailDomain,
) error {
	query := `
		INSERT INTO email_domains (domain)
		VALUES ($1)
		RETURNING id, active, created_at`

	err := r.db.QueryRowxContext(ctx, query, domain.Domain).
		Scan(&domain.ID, &domain.Active, &domain.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create email domain: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create email domain: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]EmailDomain, error) {
	query := `
		SELECT id, domain, active, created_at
		FROM email_domains
		ORDER BY domain ASC`

	var domains []EmailDomain
	if err := r.db.SelectContext(ctx, &domains, query); err != nil {
		return nil, fmt.Errorf("list email domains: %w", err)
	}

	return domains, nil
}

func (r *repository) ListActive(
	ctx context.Context,
	limit int,
) ([]string, error) {
	query := `
		SELECT domain
		FROM email_domains
		WHERE active = true
		ORDER BY domain ASC
		LIMIT $1`

	var domains []string
	if err := r.db.SelectContext(ctx, &domains, query, limit); err != nil {
		return nil, fmt.Errorf("list active domains: %w", err)
	}

	return domains, nil
}

func (r *repository) ExistsActive(
	ctx context.Context,
	domain string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM email_domains WHERE domain = $1 AND active = true
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, domain); err != nil {
		return false, fmt.Errorf("check domain: %w", err)
	}

	return exists, nil
}

func (r *repository) SetActive(
	ctx context.Context,
	id int64,
	active bool,
) (*EmailDomain, error) {
	query := `
		UPDATE email_domains
		SET active = $2
		WHERE id = $1
		RETURNING id, domain, active, created_at`

	var domain EmailDomain
	err := r.db.QueryRowxContext(ctx, query, id, active).Scan(
		&domain.ID,
		&domain.Domain,
		&domain.Active,
		&domain.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set domain active: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set domain active: %w", err)
	}

	return &domain, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
