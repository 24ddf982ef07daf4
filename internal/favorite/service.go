package favorite

import (
	"context"
	"errors"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/project"
)

// ProjectBrowser exposes the project lookups the favorites listing needs.
// Satisfied by project.Service.
type ProjectBrowser interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Summaries(
		ctx context.Context,
		ids []int64,
	) (map[int64]project.ProjectSummary, error)
}

type Service struct {
	repo     Repository
	projects ProjectBrowser
}

func NewService(repo Repository, projects ProjectBrowser) *Service {
	return &Service{repo: repo, projects: projects}
}

func (s *Service) Add(
	ctx context.Context,
	userID, projectID int64,
) (*Favorite, error) {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NotFoundError("projeto")
	}

	favorite := &Favorite{UserID: userID, ProjectID: projectID}
	if err := s.repo.Add(ctx, favorite); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("Projeto já está nos favoritos")
		}
		return nil, err
	}

	return favorite, nil
}

func (s *Service) Remove(ctx context.Context, userID, projectID int64) error {
	return s.repo.Remove(ctx, userID, projectID)
}

func (s *Service) List(
	ctx context.Context,
	userID int64,
) ([]FavoriteResponse, error) {
	favorites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(favorites))
	for i := range favorites {
		ids[i] = favorites[i].ProjectID
	}

	summaries, err := s.projects.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]FavoriteResponse, 0, len(favorites))
	for _, favorite := range favorites {
		summary, ok := summaries[favorite.ProjectID]
		if !ok {
			continue
		}
		responses = append(responses, FavoriteResponse{
			ID:          favorite.ID,
			DataCriacao: favorite.CreatedAt,
			Projeto:     summary,
		})
	}

	return responses, nil
}

var _ ProjectBrowser = (*project.Service)(nil)
