package project

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/tag"
)

// TagResolver finds or creates tags by name. Satisfied by tag.Service.
type TagResolver interface {
	Resolve(ctx context.Context, names []string) ([]tag.Tag, error)
}

var _ TagResolver = (*tag.Service)(nil)

type Service struct {
	db   *sqlx.DB
	repo Repository
	tags TagResolver
}

func NewService(db *sqlx.DB, repo Repository, tags TagResolver) *Service {
	return &Service{db: db, repo: repo, tags: tags}
}

func (s *Service) Create(
	ctx context.Context,
	actorID int64,
	req CreateProjectRequest,
) (*ProjectDetail, error) {
	resolved, err := s.tags.Resolve(ctx, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	project := &Project{
		Title:          req.Titulo,
		Description:    req.Descricao,
		AuthorID:       actorID,
		AdvisorName:    req.ProfessorOrientador,
		FileAuthorName: req.AutorArquivos,
		Semester:       normalizeSemester(req.Semestre),
		Category:       req.TipoProjeto,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Create(ctx, project); err != nil {
			return err
		}
		return txRepo.ReplaceTags(ctx, project.ID, tagIDs(resolved))
	})
	if err != nil {
		return nil, err
	}

	return s.GetDetail(ctx, project.ID)
}

func (s *Service) GetDetail(
	ctx context.Context,
	id int64,
) (*ProjectDetail, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tagsByProject, err := s.repo.TagsForProjects(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	filesByProject, err := s.repo.FilesForProjects(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.ListRatings(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := toDetail(project, tagsByProject[id], filesByProject[id], ratings)
	return &detail, nil
}

func (s *Service) Search(
	ctx context.Context,
	params SearchParams,
) ([]ProjectSummary, int, error) {
	params.Normalize()

	projects, total, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}

	tagsByProject, err := s.repo.TagsForProjects(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	filesByProject, err := s.repo.FilesForProjects(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ProjectSummary, len(projects))
	for i := range projects {
		p := &projects[i]
		summaries[i] = toSummary(p, tagsByProject[p.ID], filesByProject[p.ID])
	}

	return summaries, total, nil
}

func (s *Service) Update(
	ctx context.Context,
	id, actorID int64,
	isAdmin bool,
	req UpdateProjectRequest,
) (*ProjectDetail, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !project.CanMutate(actorID, isAdmin) {
		return nil, core.ForbiddenError(
			"Você não tem permissão para atualizar este projeto")
	}

	if req.Titulo != nil {
		project.Title = *req.Titulo
	}
	if req.Descricao != nil {
		project.Description = *req.Descricao
	}
	if req.Semestre != nil {
		project.Semester = normalizeSemester(req.Semestre)
	}
	if req.TipoProjeto != nil {
		project.Category = *req.TipoProjeto
	}
	if req.ProfessorOrientador != nil {
		project.AdvisorName = req.ProfessorOrientador
	}
	if req.AutorArquivos != nil {
		project.FileAuthorName = req.AutorArquivos
	}

	var resolved []tag.Tag
	if req.Tags != nil {
		resolved, err = s.tags.Resolve(ctx, req.Tags)
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Update(ctx, project); err != nil {
			return err
		}
		if req.Tags != nil {
			return txRepo.ReplaceTags(ctx, project.ID, tagIDs(resolved))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetDetail(ctx, project.ID)
}

func (s *Service) Delete(
	ctx context.Context,
	id, actorID int64,
	isAdmin bool,
) error {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !project.CanMutate(actorID, isAdmin) {
		return core.ForbiddenError(
			"Você não tem permissão para excluir este projeto")
	}

	return s.repo.Delete(ctx, project.ID)
}

func (s *Service) ListSemesters(
	ctx context.Context,
	page, pageSize int,
) ([]string, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	semesters, total, err := s.repo.ListSemesters(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	if semesters == nil {
		semesters = []string{}
	}

	return semesters, total, nil
}

// Summaries loads display summaries for a set of projects, keyed by id.
// Used by the favorites listing.
func (s *Service) Summaries(
	ctx context.Context,
	ids []int64,
) (map[int64]ProjectSummary, error) {
	projects, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	tagsByProject, err := s.repo.TagsForProjects(ctx, ids)
	if err != nil {
		return nil, err
	}

	filesByProject, err := s.repo.FilesForProjects(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make(map[int64]ProjectSummary, len(projects))
	for i := range projects {
		p := &projects[i]
		summaries[p.ID] = toSummary(p, tagsByProject[p.ID], filesByProject[p.ID])
	}

	return summaries, nil
}

// Exists reports whether a project is present. Used by the rating and
// favorite services to return not-found before any write.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// CanAttachFiles reports whether the actor may add files to the project.
func (s *Service) CanAttachFiles(
	ctx context.Context,
	projectID, actorID int64,
	isAdmin bool,
) error {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	if !project.CanMutate(actorID, isAdmin) {
		return core.ForbiddenError(
			"Você não tem permissão para enviar arquivos para este projeto")
	}

	return nil
}

func normalizeSemester(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func tagIDs(tags []tag.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i := range tags {
		ids[i] = tags[i].ID
	}
	return ids
}
