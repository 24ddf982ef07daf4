package tag

import (
	"context"
	"errors"

	"github.com/repotec-dev/repotec-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string) (*Tag, error) {
	tag := &Tag{Name: name}
	if err := s.repo.Create(ctx, tag); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("Tag já existe")
		}
		return nil, err
	}
	return tag, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Tag, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Tag, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]Tag, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(
	ctx context.Context,
	term string,
	page, pageSize int,
) ([]Tag, int, error) {
	return s.repo.Search(ctx, term, page, pageSize)
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	name string,
) (*Tag, error) {
	tag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.repo.Update(ctx, tag); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("Já existe uma tag com este nome")
		}
		return nil, err
	}

	return tag, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Resolve maps a list of names to tag rows, creating the missing ones.
// Used by the project service when a create or patch carries a tag list.
func (s *Service) Resolve(
	ctx context.Context,
	names []string,
) ([]Tag, error) {
	tags := make([]Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag, err := s.repo.FindOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}
