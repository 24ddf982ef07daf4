package admin

import (
	"context"
	"fmt"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type catalogRepository struct {
	db core.DBTX
}

// NewCatalogCounter returns a CatalogCounter backed by the main database.
func NewCatalogCounter(db core.DBTX) CatalogCounter {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CatalogCounts(
	ctx context.Context,
) (*CatalogCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM projects) AS projects,
			(SELECT COUNT(*) FROM ratings) AS ratings,
			(SELECT COUNT(*) FROM files) AS files`

	var counts CatalogCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("catalog counts: %w", err)
	}

	return &counts, nil
}
