package faq

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	question, answer string,
) (*FAQ, error) {
	faq := &FAQ{Question: question, Answer: answer}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, err
	}
	return faq, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*FAQ, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]FAQ, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateFAQRequest,
) (*FAQ, error) {
	faq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Pergunta != nil {
		faq.Question = *req.Pergunta
	}
	if req.Resposta != nil {
		faq.Answer = *req.Resposta
	}

	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, err
	}

	return faq, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
