package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, tag *Tag) error
	GetByID(ctx context.Context, id int64) (*Tag, error)
	GetByName(ctx context.Context, name string) (*Tag, error)
	List(ctx context.Context) ([]Tag, error)
	Search(
		ctx context.Context,
		term string,
		page, pageSize int,
	) ([]Tag, int, error)
	Update(ctx context.Context, tag *Tag) error
	Delete(ctx context.Context, id int64) error
	FindOrCreate(ctx context.Context, name string) (*Tag, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tag *Tag) error {
	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query, tag.Name).Scan(&tag.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Tag, error) {
	query := `SELECT id, name FROM tags WHERE id = $1`

	var tag Tag
	err := r.db.GetContext(ctx, &tag, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tag: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &tag, nil
}

func (r *repository) GetByName(
	ctx context.Context,
	name string,
) (*Tag, error) {
	query := `SELECT id, name FROM tags WHERE name = $1`

	var tag Tag
	err := r.db.GetContext(ctx, &tag, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tag by name: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by name: %w", err)
	}

	return &tag, nil
}

func (r *repository) List(ctx context.Context) ([]Tag, error) {
	query := `SELECT id, name FROM tags ORDER BY name ASC`

	var tags []Tag
	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func (r *repository) Search(
	ctx context.Context,
	term string,
	page, pageSize int,
) ([]Tag, int, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if term != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(term)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM tags WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name
		FROM tags
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, pageSize, (page-1)*pageSize)

	var tags []Tag
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search tags: %w", err)
	}

	return tags, total, nil
}

func (r *repository) Update(ctx context.Context, tag *Tag) error {
	query := `UPDATE tags SET name = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update tag: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tags WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete tag: %w", core.ErrNotFound)
	}

	return nil
}

// FindOrCreate resolves by exact, case-sensitive name. The upsert keeps
// concurrent project submissions from racing on the unique constraint.
func (r *repository) FindOrCreate(
	ctx context.Context,
	name string,
) (*Tag, error) {
	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var tag Tag
	err := r.db.QueryRowxContext(ctx, query, name).Scan(&tag.ID, &tag.Name)
	if err != nil {
		return nil, fmt.Errorf("find or create tag: %w", err)
	}

	return &tag, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
