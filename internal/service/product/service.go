package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the active catalog, optionally narrowed to one category.
// An unknown category yields an empty, non-nil slice.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.ListActive(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
