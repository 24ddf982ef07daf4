package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Project, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, params SearchParams) ([]Project, int, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id int64) error
	ReplaceTags(ctx context.Context, projectID int64, tagIDs []int64) error
	TagsForProjects(
		ctx context.Context,
		projectIDs []int64,
	) (map[int64][]TagRef, error)
	FilesForProjects(
		ctx context.Context,
		projectIDs []int64,
	) (map[int64][]FileRef, error)
	ListRatings(ctx context.Context, projectID int64) ([]RatingRef, error)
	ListSemesters(ctx context.Context, page, pageSize int) ([]string, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const projectColumns = `
	p.id, p.title, p.description, p.author_id, p.advisor_name,
	p.file_author_name, p.semester, p.category, p.reputation,
	p.created_at, p.updated_at,
	u.name AS author_name`

func (r *repository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (
			title, description, author_id, advisor_name,
			file_author_name, semester, category
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, reputation, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		project.Title,
		project.Description,
		project.AuthorID,
		project.AdvisorName,
		project.FileAuthorName,
		project.Semester,
		project.Category,
	).Scan(
		&project.ID,
		&project.Reputation,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	var project Project
	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

func (r *repository) GetByIDs(
	ctx context.Context,
	ids []int64,
) ([]Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = ANY($1)`

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, ids); err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}

	return projects, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Search(
	ctx context.Context,
	params SearchParams,
) ([]Project, int, error) {
	var (
		conditions []string
		args       []any
	)

	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Termo != "" {
		conditions = append(conditions,
			"p.title ILIKE "+addArg("%"+escapeLike(params.Termo)+"%"))
	}
	if len(params.Tags) > 0 {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM project_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.project_id = p.id AND t.name = ANY(`+addArg(params.Tags)+`)
		)`)
	}
	if params.Tipo != "" {
		conditions = append(conditions, "p.category = "+addArg(params.Tipo))
	}
	if params.AutorID > 0 {
		conditions = append(conditions, "p.author_id = "+addArg(params.AutorID))
	}
	if params.Semestre != "" {
		conditions = append(conditions, "p.semester = "+addArg(params.Semestre))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM projects p %s`, where)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+projectColumns+`
		FROM projects p
		JOIN users u ON u.id = p.author_id
		%s
		ORDER BY p.updated_at DESC
		LIMIT %s OFFSET %s`,
		where, addArg(params.PageSize), addArg(params.Offset()))

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search projects: %w", err)
	}

	return projects, total, nil
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, advisor_name = $4,
			file_author_name = $5, semester = $6, category = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &project.UpdatedAt, query,
		project.ID,
		project.Title,
		project.Description,
		project.AdvisorName,
		project.FileAuthorName,
		project.Semester,
		project.Category,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete project: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ReplaceTags(
	ctx context.Context,
	projectID int64,
	tagIDs []int64,
) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM project_tags WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("clear project tags: %w", err)
	}

	if len(tagIDs) == 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO project_tags (project_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`,
		projectID, tagIDs)
	if err != nil {
		return fmt.Errorf("set project tags: %w", err)
	}

	return nil
}

func (r *repository) TagsForProjects(
	ctx context.Context,
	projectIDs []int64,
) (map[int64][]TagRef, error) {
	if len(projectIDs) == 0 {
		return map[int64][]TagRef{}, nil
	}

	query := `
		SELECT pt.project_id, t.id, t.name
		FROM project_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.project_id = ANY($1)
		ORDER BY t.name`

	var rows []struct {
		ProjectID int64  `db:"project_id"`
		ID        int64  `db:"id"`
		Name      string `db:"name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, projectIDs); err != nil {
		return nil, fmt.Errorf("load project tags: %w", err)
	}

	tags := make(map[int64][]TagRef, len(projectIDs))
	for _, row := range rows {
		tags[row.ProjectID] = append(tags[row.ProjectID], TagRef{
			ID:   row.ID,
			Nome: row.Name,
		})
	}

	return tags, nil
}

func (r *repository) FilesForProjects(
	ctx context.Context,
	projectIDs []int64,
) (map[int64][]FileRef, error) {
	if len(projectIDs) == 0 {
		return map[int64][]FileRef{}, nil
	}

	query := `
		SELECT pf.project_id, f.id, f.name, f.path, f.url, f.size,
			f.content_type
		FROM project_files pf
		JOIN files f ON f.id = pf.file_id
		WHERE pf.project_id = ANY($1)
		ORDER BY f.id`

	var rows []struct {
		ProjectID int64 `db:"project_id"`
		FileRef
	}
	if err := r.db.SelectContext(ctx, &rows, query, projectIDs); err != nil {
		return nil, fmt.Errorf("load project files: %w", err)
	}

	files := make(map[int64][]FileRef, len(projectIDs))
	for _, row := range rows {
		files[row.ProjectID] = append(files[row.ProjectID], row.FileRef)
	}

	return files, nil
}

func (r *repository) ListRatings(
	ctx context.Context,
	projectID int64,
) ([]RatingRef, error) {
	query := `
		SELECT r.id, r.score, r.comment, r.created_at,
			u.id AS author_id, u.name AS author_name
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.project_id = $1
		ORDER BY r.created_at DESC`

	var ratings []RatingRef
	if err := r.db.SelectContext(ctx, &ratings, query, projectID); err != nil {
		return nil, fmt.Errorf("load project ratings: %w", err)
	}

	return ratings, nil
}

func (r *repository) ListSemesters(
	ctx context.Context,
	page, pageSize int,
) ([]string, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(DISTINCT semester)
		FROM projects
		WHERE semester IS NOT NULL`)
	if err != nil {
		return nil, 0, fmt.Errorf("count semesters: %w", err)
	}

	var semesters []string
	err = r.db.SelectContext(ctx, &semesters, `
		SELECT DISTINCT semester
		FROM projects
		WHERE semester IS NOT NULL
		ORDER BY semester DESC
		LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list semesters: %w", err)
	}

	return semesters, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
