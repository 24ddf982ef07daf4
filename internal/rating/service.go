package rating

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/project"
)

// ProjectChecker reports project existence. Satisfied by project.Service.
type ProjectChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

var _ ProjectChecker = (*project.Service)(nil)

type Service struct {
	db       *sqlx.DB
	repo     Repository
	projects ProjectChecker
}

func NewService(
	db *sqlx.DB,
	repo Repository,
	projects ProjectChecker,
) *Service {
	return &Service{db: db, repo: repo, projects: projects}
}

// Rate records the user's score for a project. Rating the same project
// twice overwrites the previous score instead of failing.
func (s *Service) Rate(
	ctx context.Context,
	projectID, userID int64,
	req RateProjectRequest,
) (*Rating, error) {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NotFoundError("projeto")
	}

	rating := &Rating{
		ProjectID: projectID,
		UserID:    userID,
		Score:     req.Nota,
		Comment:   req.Comentario,
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Upsert(ctx, rating); err != nil {
			return err
		}
		return txRepo.RefreshProjectReputation(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}

	return rating, nil
}

func (s *Service) GetOwn(
	ctx context.Context,
	projectID, userID int64,
) (*Rating, error) {
	return s.repo.GetByProjectAndUser(ctx, projectID, userID)
}

// Update changes an existing rating. Only the rating's author may update
// it; admins manage ratings through deletion only.
func (s *Service) Update(
	ctx context.Context,
	id, actorID int64,
	req UpdateRatingRequest,
) (*Rating, error) {
	rating, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rating.UserID != actorID {
		return nil, core.ForbiddenError(
			"Você só pode editar suas próprias avaliações")
	}

	if req.Nota != nil {
		rating.Score = *req.Nota
	}
	if req.Comentario != nil {
		rating.Comment = req.Comentario
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Update(ctx, rating); err != nil {
			return err
		}
		return txRepo.RefreshProjectReputation(ctx, rating.ProjectID)
	})
	if err != nil {
		return nil, err
	}

	return rating, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	rating, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Delete(ctx, rating.ID); err != nil {
			return err
		}
		return txRepo.RefreshProjectReputation(ctx, rating.ProjectID)
	})
}
