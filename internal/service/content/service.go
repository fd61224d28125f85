package content

import (
	"context"
	"strings"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/repository"
)

type Service interface {
	Articles(ctx context.Context, category string) ([]domain.Article, error)
	Tips(ctx context.Context, category string) ([]domain.Tip, error)
	Materials(ctx context.Context, material string) ([]domain.MaterialGuide, error)
}

type service struct {
	repo repository.ContentRepository
}

func NewService(repo repository.ContentRepository) Service {
	return &service{repo: repo}
}

func matches(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}

func (s *service) Articles(ctx context.Context, category string) ([]domain.Article, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Article{}
	for _, a := range doc.Articles {
		if matches(category, a.Category) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *service) Tips(ctx context.Context, category string) ([]domain.Tip, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Tip{}
	for _, t := range doc.Tips {
		if matches(category, t.Category) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *service) Materials(ctx context.Context, material string) ([]domain.MaterialGuide, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.MaterialGuide{}
	for _, m := range doc.Materials {
		if matches(material, m.Material) {
			out = append(out, m)
		}
	}
	return out, nil
}
