package emaildomain

import (
	"context"
	"strings"

	"github.com/repotec-dev/repotec-api/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsAllowed reports whether the email's domain is on the active allow-list.
// A deactivated domain fails even if it was usable before.
func (s *Service) IsAllowed(ctx context.Context, email string) (bool, error) {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return false, nil
	}

	return s.repo.ExistsActive(ctx, strings.ToLower(domain))
}

func (s *Service) ActiveDomains(
	ctx context.Context,
	limit int,
) ([]string, error) {
	return s.repo.ListActive(ctx, limit)
}

func (s *Service) List(ctx context.Context) ([]EmailDomain, error) {
	return s.repo.List(ctx)
}

func (s *Service) Add(
	ctx context.Context,
	domain string,
) (*EmailDomain, error) {
	entity := &EmailDomain{Domain: strings.ToLower(domain)}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) Activate(ctx context.Context, id int64) (*EmailDomain, error) {
	return s.repo.SetActive(ctx, id, true)
}

func (s *Service) Deactivate(
	ctx context.Context,
	id int64,
) (*EmailDomain, error) {
	return s.repo.SetActive(ctx, id, false)
}

var _ auth.DomainChecker = (*Service)(nil)
